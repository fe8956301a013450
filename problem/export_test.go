// SPDX-License-Identifier: MIT

package problem

// Hold marks the sub-problem busy until the returned function is called.
func (p *SubProblem) Hold() (func(), error) {
	if err := p.acquire("test"); err != nil {
		return nil, err
	}
	return p.releaseBusy, nil
}
