package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	campaignSendsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campaign_service",
			Name:      "sends_total",
			Help:      "Total campaign send attempts.",
		},
		[]string{"outcome"}, // sent, already_sent, not_found, failed
	)

	campaignInstancesCreatedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campaign_service",
			Name:      "instances_created_total",
			Help:      "Total campaign instances created by committed sends.",
		},
		[]string{"audience"},
	)

	campaignEmailsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campaign_service",
			Name:      "emails_total",
			Help:      "Total campaign emails by delivery state after commit.",
		},
		[]string{"state"}, // recorded, sent
	)

	campaignSendDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campaign_service",
			Name:      "send_duration_seconds",
			Help:      "Duration of the campaign send transaction.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"type"},
	)
)

const (
	sendOutcomeSent        = "sent"
	sendOutcomeAlreadySent = "already_sent"
	sendOutcomeNotFound    = "not_found"
	sendOutcomeFailed      = "failed"
)
