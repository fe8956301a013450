// SPDX-License-Identifier: MIT

package problem

import (
	"github.com/katalvlaran/lvlot/oterr"
)

// Policy enumerates sub-problem keys from the ordered group labels.
type Policy interface {
	Keys(labels []string) ([]Key, error)
}

type policyFunc func(labels []string) ([]Key, error)

func (f policyFunc) Keys(labels []string) ([]Key, error) { return f(labels) }

// Sequential pairs consecutive groups: (l0, l1), (l1, l2), ...
func Sequential() Policy {
	return policyFunc(func(labels []string) ([]Key, error) {
		keys := make([]Key, 0, len(labels))
		for i := 0; i+1 < len(labels); i++ {
			keys = append(keys, Key{Source: labels[i], Target: labels[i+1]})
		}
		return keys, nil
	})
}

// Triu pairs every group with every later group: (li, lj) for i < j.
func Triu() Policy {
	return policyFunc(func(labels []string) ([]Key, error) {
		var keys []Key
		for i := range labels {
			for j := i + 1; j < len(labels); j++ {
				keys = append(keys, Key{Source: labels[i], Target: labels[j]})
			}
		}
		return keys, nil
	})
}

// Star pairs every other group with reference: (l, reference).
func Star(reference string) Policy {
	return policyFunc(func(labels []string) ([]Key, error) {
		if !contains(labels, reference) {
			return nil, oterr.Errorf(opPartition, oterr.ErrConfiguration, "reference group %q not found", reference)
		}
		keys := make([]Key, 0, len(labels))
		for _, l := range labels {
			if l != reference {
				keys = append(keys, Key{Source: l, Target: reference})
			}
		}
		return keys, nil
	})
}

// Explicit uses the given keys in order. Every label must exist and keys must
// be distinct.
func Explicit(keys ...Key) Policy {
	return policyFunc(func(labels []string) ([]Key, error) {
		seen := make(map[Key]bool, len(keys))
		for _, k := range keys {
			if !contains(labels, k.Source) || !contains(labels, k.Target) {
				return nil, oterr.Errorf(opPartition, oterr.ErrConfiguration, "key %s names an unknown group", k)
			}
			if seen[k] {
				return nil, oterr.Errorf(opPartition, oterr.ErrConfiguration, "duplicate key %s", k)
			}
			seen[k] = true
		}
		return append([]Key(nil), keys...), nil
	})
}

func contains(labels []string, l string) bool {
	for _, x := range labels {
		if x == l {
			return true
		}
	}

	return false
}
