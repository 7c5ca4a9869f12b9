package auditlog

// Action is the enumerated event name carried by every log entry. Every
// mutating operation in the system, permitted or denied, appends exactly one
// entry.
type Action string

const (
	// Transaction lifecycle
	ActionIncomeCreated   Action = "income_created"
	ActionExpenseCreated  Action = "expense_created"
	ActionIncomeApproved  Action = "income_approved"
	ActionIncomeRejected  Action = "income_rejected"
	ActionExpenseApproved Action = "expense_approved"
	ActionExpenseRejected Action = "expense_rejected"
	ActionExpensePosted   Action = "expense_posted"

	// Solvency outcomes. The creation refusal records an expense that was
	// never stored; the auto-rejection records a failed one-shot approval;
	// the post failure records a retryable attempt that left the expense
	// pending.
	ActionExpenseRefusedInsufficientFunds      Action = "expense_refused_insufficient_funds"
	ActionExpenseAutoRejectedInsufficientFunds Action = "expense_auto_rejected_insufficient_funds"
	ActionExpensePostInsufficientFunds         Action = "expense_post_insufficient_funds"

	// Entity management
	ActionFunderCreated     Action = "funder_created"
	ActionFunderDeactivated Action = "funder_deactivated"
	ActionProjectCreated    Action = "project_created"

	// Log entry lifecycle
	ActionLogSoftRemoved      Action = "log_soft_removed"
	ActionLogRestored         Action = "log_restored"
	ActionLogFinalizedRemoved Action = "log_finalized_removed"

	// Invites
	ActionInviteCreated  Action = "invite_created"
	ActionInviteRedeemed Action = "invite_redeemed"
)

// Denied derives the audit action for a role-gated operation attempted by an
// actor without the required role.
func Denied(op string) Action {
	return Action(op + "_denied_insufficient_role")
}
