// Copyright 2018 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package metrics exposes Prometheus counters for multisig operations and the
// vesting claim loop.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var multisigOps = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tokenops_multisig_operations_total",
		Help: "Multisig wallet operations by operation and result.",
	},
	[]string{"op", "result"},
)

var claimOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tokenops_claims_total",
		Help: "Per-recipient claim attempts by outcome.",
	},
	[]string{"outcome"},
)

var timerRearms = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "tokenops_claim_timer_rearms_total",
		Help: "Intermediate wake-ups caused by the maximum single timer delay.",
	},
)

var nextTrigger = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "tokenops_claim_next_trigger_seconds",
		Help: "Unix time of the next scheduled claim cycle.",
	},
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func MultisigSubmitted(err error) {
	multisigOps.With(prometheus.Labels{"op": "submit", "result": result(err)}).Inc()
}

func MultisigConfirmed(err error) {
	multisigOps.With(prometheus.Labels{"op": "confirm", "result": result(err)}).Inc()
}

func MultisigExecuted(err error) {
	multisigOps.With(prometheus.Labels{"op": "execute", "result": result(err)}).Inc()
}

func MultisigRevoked(err error) {
	multisigOps.With(prometheus.Labels{"op": "revoke", "result": result(err)}).Inc()
}

func ClaimSubmitted() {
	claimOutcomes.With(prometheus.Labels{"outcome": "claimed"}).Inc()
}

func ClaimSkipped() {
	claimOutcomes.With(prometheus.Labels{"outcome": "skipped"}).Inc()
}

func ClaimFailed() {
	claimOutcomes.With(prometheus.Labels{"outcome": "failed"}).Inc()
}

func TimerRearmed() {
	timerRearms.Inc()
}

func NextTrigger(t time.Time) {
	nextTrigger.Set(float64(t.Unix()))
}
