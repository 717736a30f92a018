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

package store

import (
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/go-faster/errors"
)

var cursorPrefix = []byte("cursor/")

func cursorKey(name string) []byte {
	return append(append([]byte{}, cursorPrefix...), name...)
}

// NextTrigger returns the persisted next trigger instant of the named
// schedule. The boolean is false when nothing was persisted yet.
func (s *Store) NextTrigger(name string) (time.Time, bool, error) {
	raw, err := s.get(cursorKey(name))
	if errors.Is(err, ErrNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errors.Wrapf(err, "read cursor %q", name)
	}
	var unix uint64
	if err := rlp.DecodeBytes(raw, &unix); err != nil {
		return time.Time{}, false, errors.Wrapf(err, "decode cursor %q", name)
	}
	return time.Unix(int64(unix), 0).UTC(), true, nil
}

// SetNextTrigger persists the next trigger instant of the named schedule,
// truncated to whole seconds.
func (s *Store) SetNextTrigger(name string, t time.Time) error {
	if t.Unix() < 0 {
		return errors.Errorf("cursor %q: instant %s before epoch", name, t)
	}
	raw, err := rlp.EncodeToBytes(uint64(t.Unix()))
	if err != nil {
		return err
	}
	if err := s.put(cursorKey(name), raw); err != nil {
		return errors.Wrapf(err, "write cursor %q", name)
	}
	s.log.Debug("Persisted schedule cursor", "name", name, "next", t.UTC())
	return nil
}
