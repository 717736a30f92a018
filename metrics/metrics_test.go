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

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMultisigCounters(t *testing.T) {
	ok := multisigOps.With(prometheus.Labels{"op": "submit", "result": "ok"})
	failed := multisigOps.With(prometheus.Labels{"op": "confirm", "result": "error"})
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	MultisigSubmitted(nil)
	MultisigConfirmed(errors.New("reverted"))

	require.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	require.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestMultisigRecoveryCounters(t *testing.T) {
	executed := multisigOps.With(prometheus.Labels{"op": "execute", "result": "ok"})
	revoked := multisigOps.With(prometheus.Labels{"op": "revoke", "result": "error"})
	executedBefore, revokedBefore := testutil.ToFloat64(executed), testutil.ToFloat64(revoked)

	MultisigExecuted(nil)
	MultisigRevoked(errors.New("not confirmed"))

	require.Equal(t, executedBefore+1, testutil.ToFloat64(executed))
	require.Equal(t, revokedBefore+1, testutil.ToFloat64(revoked))
}

func TestNextTriggerGauge(t *testing.T) {
	at := time.Date(2022, time.April, 2, 8, 41, 0, 0, time.UTC)
	NextTrigger(at)
	require.Equal(t, float64(at.Unix()), testutil.ToFloat64(nextTrigger))
}
