package session

import (
	"go-easyapply-automation/internal/models"
)

// LedgerView is the part of the ledger the gate reads.
type LedgerView interface {
	HasRecord(jobID string) bool
	AppliedCountToday() int
}

// Decision is the gate verdict for a posting. The zero value means apply.
type Decision string

const (
	Apply           Decision = ""
	AlreadyRecorded Decision = "already_recorded"
	QuotaReached    Decision = "quota_reached"
	NoQuickApply    Decision = "no_quick_apply"
)

// Gate decides whether a posting should enter the wizard. It keeps no state
// of its own; counts come from the ledger on every call.
type Gate struct {
	ledger LedgerView
	quota  int
}

func NewGate(ledger LedgerView, quota int) *Gate {
	return &Gate{ledger: ledger, quota: quota}
}

func (g *Gate) Decide(p models.JobPosting) Decision {
	switch {
	case g.ledger.HasRecord(p.ID):
		return AlreadyRecorded
	case g.QuotaReached():
		return QuotaReached
	case !p.QuickApply:
		return NoQuickApply
	default:
		return Apply
	}
}

func (g *Gate) ShouldApply(p models.JobPosting) bool {
	return g.Decide(p) == Apply
}

// QuotaReached reports whether today's Applied count has hit the quota.
func (g *Gate) QuotaReached() bool {
	return g.ledger.AppliedCountToday() >= g.quota
}
