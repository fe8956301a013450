// SPDX-License-Identifier: MIT

package cost

import "fmt"

// errLabels describes the first difference between two label sequences.
type errLabels struct {
	pos                 int
	got, want           int
	gotLabel, wantLabel string
}

func (e errLabels) Error() string {
	if e.pos < 0 {
		return fmt.Sprintf("%d labels, want %d", e.got, e.want)
	}

	return fmt.Sprintf("position %d is %q, want %q", e.pos, e.gotLabel, e.wantLabel)
}
