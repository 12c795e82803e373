package token

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusattend_qr_tokens_issued_total",
		Help: "QR attendance tokens issued.",
	})
	tokensRedeemed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusattend_qr_tokens_redeemed_total",
		Help: "QR attendance tokens redeemed successfully.",
	})
	redeemFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusattend_qr_redeem_failures_total",
		Help: "Rejected redemption attempts by reason.",
	}, []string{"reason"})
)
