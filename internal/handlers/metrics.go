package handlers

import "github.com/prometheus/client_golang/prometheus"

type APIMetrics struct {
	PostRequests       *prometheus.CounterVec
	AccountRequests    *prometheus.CounterVec
	AIRequests         *prometheus.CounterVec
	AutomationRequests *prometheus.CounterVec
}

func (m *APIMetrics) IncPost(op, status string) {
	if m == nil || m.PostRequests == nil {
		return
	}
	m.PostRequests.WithLabelValues(op, status).Inc()
}

func (m *APIMetrics) IncAccount(op, status string) {
	if m == nil || m.AccountRequests == nil {
		return
	}
	m.AccountRequests.WithLabelValues(op, status).Inc()
}

func (m *APIMetrics) IncAI(op, status string) {
	if m == nil || m.AIRequests == nil {
		return
	}
	m.AIRequests.WithLabelValues(op, status).Inc()
}

func (m *APIMetrics) IncAutomation(status string) {
	if m == nil || m.AutomationRequests == nil {
		return
	}
	m.AutomationRequests.WithLabelValues(status).Inc()
}
