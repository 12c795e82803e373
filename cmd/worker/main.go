package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"campusattend/internal/auth"
	"campusattend/internal/config"
	"campusattend/internal/identity"
	"campusattend/internal/mailclient"
	"campusattend/internal/queue"
	"campusattend/internal/store"
)

// Worker consumes magic-link jobs, signs a short-lived login token and hands
// the link to the mail-delivery service.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "campusattend:mail")
	}

	mail := mailclient.New(cfg.MailServiceURL, cfg.MailSkip)
	if !cfg.MailSkip {
		if err := mail.Health(ctx); err != nil {
			log.Printf("WARNING: mail service not available: %v", err)
			log.Println("Worker will retry delivery when jobs arrive")
		} else {
			log.Println("Mail service connected")
		}
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != identity.MsgMagicLink {
			continue
		}

		var job identity.MagicLinkJob
		if err := json.Unmarshal(msg.Body, &job); err != nil {
			log.Printf("bad magic-link job: %v", err)
			continue
		}

		signin, err := auth.IssueSingle(job.UserID, job.Email, job.Role, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.MagicLinkTTL)
		if err != nil {
			log.Printf("sign login token for %s failed: %v", job.Email, err)
			continue
		}

		link := cfg.AppBaseURL + "/auth/callback?token=" + signin
		if err := mail.SendMagicLink(ctx, job.Email, link); err != nil {
			log.Printf("magic-link delivery to %s failed: %v", job.Email, err)
			continue
		}
		log.Printf("magic link sent to %s", job.Email)
	}

	log.Println("worker stopped")
}
