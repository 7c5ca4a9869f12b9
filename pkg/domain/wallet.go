package domain

// WalletID names the accounting bucket a transaction is applied against:
// either a funder's id or the organization sentinel.
type WalletID string

// OrgWallet is the fallback wallet used when a transaction carries no
// explicit wallet and references no project-owned funder.
const OrgWallet WalletID = "org"

func (w WalletID) IsOrg() bool  { return w == OrgWallet }
func (w WalletID) IsZero() bool { return w == "" }

// WalletForFunder maps a funder id onto its implicit wallet.
func WalletForFunder(id FunderID) WalletID {
	return WalletID(id.String())
}
