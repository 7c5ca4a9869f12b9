package models

import (
	"encoding/json"
	"strings"

	"fundledger/pkg/domain"
)

// WalletRef is a wallet reference as stored inside the organization document.
// Remote snapshots produced by other clients sometimes carry reference-like
// values instead of plain ids (an object with an "id" field, or a document
// path whose last segment is the id). UnmarshalJSON normalizes all of those
// to the scalar id so local state only ever holds plain ids.
type WalletRef string

func (r WalletRef) IsZero() bool { return r == "" }

// Wallet returns the referenced wallet id, or the zero WalletID when unset.
func (r WalletRef) Wallet() domain.WalletID { return domain.WalletID(r) }

func RefForWallet(w domain.WalletID) WalletRef { return WalletRef(w) }

func (r *WalletRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = WalletRef(lastPathSegment(s))
		return nil
	}

	var obj struct {
		ID   string `json:"id"`
		Path string `json:"path"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	switch {
	case obj.ID != "":
		*r = WalletRef(obj.ID)
	case obj.Path != "":
		*r = WalletRef(lastPathSegment(obj.Path))
	default:
		*r = ""
	}
	return nil
}

func lastPathSegment(s string) string {
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}
