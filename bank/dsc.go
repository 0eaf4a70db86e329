package bank

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DSC is the issued synthetic-dollar ledger. Burns are gated to the owner
// account (the engine's custody account); minting authority is whoever holds
// the handle, and the engine is constructed as that holder.
type DSC struct {
	*Ledger
	owner common.Address
}

// NewDSC returns a DSC ledger gated to owner.
func NewDSC(owner common.Address) *DSC {
	return &DSC{
		Ledger: NewLedger("DSC"),
		owner:  owner,
	}
}

// Owner returns the single mint/burn authority account.
func (d *DSC) Owner() common.Address { return d.owner }

// Burn destroys amount units held by the owner account. Units must first be
// transferred into the owner's custody; holders cannot be burned in place.
func (d *DSC) Burn(from common.Address, amount *big.Int) error {
	if from != d.owner {
		return ErrNotOwner
	}
	return d.Ledger.Burn(from, amount)
}
