// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package credits

import (
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/grun-exchange/creditd/access"
	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/fault"
	"github.com/grun-exchange/creditd/ledger"
	"github.com/grun-exchange/creditd/rpc/ratelimit"
)

// Ledger - the ledger operations offered over RPC
type Ledger interface {
	Mint(caller account.Principal, arguments ledger.MintArguments) (uint64, error)
	Transfer(caller account.Principal, from account.Principal, to account.Principal, assetId uint64, quantity uint64) error
	SetApproval(caller account.Principal, operator account.Principal, approved bool) error
	Retire(caller account.Principal, assetId uint64, quantity uint64) (*ledger.Retirement, error)
	ReviewAsset(caller account.Principal, assetId uint64, decision ledger.Decision) error
	SetSellerVerification(caller account.Principal, seller account.Principal, verified bool) error
	GrantRole(caller account.Principal, role access.Role, principal account.Principal) error
	RevokeRole(caller account.Principal, role access.Role, principal account.Principal) error
	UpdatePrice(caller account.Principal, assetId uint64, price decimal.Decimal) error
	Asset(assetId uint64) (*ledger.Asset, error)
	Assets(start uint64, count int) ([]*ledger.Asset, error)
	BalanceOf(holder account.Principal, assetId uint64) (uint64, error)
	Holdings(holder account.Principal) ([]ledger.Holding, error)
	Supply(assetId uint64) (*ledger.Supply, error)
	Retirements(assetId uint64) ([]ledger.Retirement, error)
}

// Roles - role queries
type Roles interface {
	Roles(principal account.Principal) access.RoleSet
	Members(role access.Role) []account.Principal
}

const (
	MaximumAssetsCount = 100
	rateLimitCredits   = 200
	rateBurstCredits   = 100
)

// Credits - type for the RPC
type Credits struct {
	Log      *logger.L
	Limiter  *rate.Limiter
	Ledger   Ledger
	Registry Roles
}

// New - create the credits RPC handler
func New(log *logger.L, l Ledger, roles Roles) *Credits {
	return &Credits{
		Log:      log,
		Limiter:  rate.NewLimiter(rateLimitCredits, rateBurstCredits),
		Ledger:   l,
		Registry: roles,
	}
}

// ActionReply - result of a state changing call without data
type ActionReply struct {
	Status string `json:"status"`
}

const statusOk = "ok"

// Mint
// ----

// MintArguments - arguments for RPC
type MintArguments struct {
	Caller      account.Principal `json:"caller"`
	ProjectName string            `json:"projectName"`
	Verifier    string            `json:"verifier"`
	Expiry      time.Time         `json:"expiry"`
	Quantity    uint64            `json:"quantity"`
	Price       decimal.Decimal   `json:"price"`
	MetadataRef string            `json:"metadataRef"`
}

// MintReply - result of mint
type MintReply struct {
	AssetId uint64 `json:"assetId"`
}

// Mint - issue a new batch of credits to the caller
func (credits *Credits) Mint(arguments *MintArguments, reply *MintReply) error {

	if err := ratelimit.Limit(credits.Limiter); nil != err {
		return err
	}

	credits.Log.Infof("Credits.Mint: %+v", arguments)

	id, err := credits.Ledger.Mint(arguments.Caller, ledger.MintArguments{
		ProjectName: arguments.ProjectName,
		Verifier:    arguments.Verifier,
		Expiry:      arguments.Expiry,
		Quantity:    arguments.Quantity,
		Price:       arguments.Price,
		MetadataRef: arguments.MetadataRef,
	})
	if nil != err {
		return err
	}

	reply.AssetId = id
	return nil
}

// Transfer
// --------

// TransferArguments - arguments for RPC
type TransferArguments struct {
	Caller   account.Principal `json:"caller"`
	From     account.Principal `json:"from"`
	To       account.Principal `json:"to"`
	AssetId  uint64            `json:"assetId"`
	Quantity uint64            `json:"quantity"`
}

// Transfer - move units between holders
func (credits *Credits) Transfer(arguments *TransferArguments, reply *ActionReply) error {

	if err := ratelimit.Limit(credits.Limiter); nil != err {
		return err
	}

	credits.Log.Infof("Credits.Transfer: %+v", arguments)

	err := credits.Ledger.Transfer(arguments.Caller, arguments.From, arguments.To, arguments.AssetId, arguments.Quantity)
	if nil != err {
		return err
	}
	reply.Status = statusOk
	return nil
}

// ApprovalArguments - arguments for RPC
type ApprovalArguments struct {
	Holder   account.Principal `json:"holder"`
	Operator account.Principal `json:"operator"`
	Approved bool              `json:"approved"`
}

// Approve - allow or disallow an operator to transfer for the holder
func (credits *Credits) Approve(arguments *ApprovalArguments, reply *ActionReply) error {

	if err := ratelimit.Limit(credits.Limiter); nil != err {
		return err
	}

	credits.Log.Infof("Credits.Approve: %+v", arguments)

	err := credits.Ledger.SetApproval(arguments.Holder, arguments.Operator, arguments.Approved)
	if nil != err {
		return err
	}
	reply.Status = statusOk
	return nil
}

// Retire
// ------

// RetireArguments - arguments for RPC
type RetireArguments struct {
	Caller   account.Principal `json:"caller"`
	AssetId  uint64            `json:"assetId"`
	Quantity uint64            `json:"quantity"`
}

// RetireReply - the retirement event
type RetireReply struct {
	Retirement *ledger.Retirement `json:"retirement"`
}

// Retire - permanently destroy units held by the caller
func (credits *Credits) Retire(arguments *RetireArguments, reply *RetireReply) error {

	if err := ratelimit.Limit(credits.Limiter); nil != err {
		return err
	}

	credits.Log.Infof("Credits.Retire: %+v", arguments)

	r, err := credits.Ledger.Retire(arguments.Caller, arguments.AssetId, arguments.Quantity)
	if nil != err {
		return err
	}
	reply.Retirement = r
	return nil
}

// Administration
// --------------

// ReviewArguments - arguments for RPC
type ReviewArguments struct {
	Caller   account.Principal `json:"caller"`
	AssetId  uint64            `json:"assetId"`
	Decision string            `json:"decision"`
}

// Review - verify or reject a pending asset
func (credits *Credits) Review(arguments *ReviewArguments, reply *ActionReply) error {

	if err := ratelimit.Limit(credits.Limiter); nil != err {
		return err
	}

	credits.Log.Infof("Credits.Review: %+v", arguments)

	decision, err := ledger.ParseDecision(arguments.Decision)
	if nil != err {
		return err
	}

	err = credits.Ledger.ReviewAsset(arguments.Caller, arguments.AssetId, decision)
	if nil != err {
		return err
	}
	reply.Status = statusOk
	return nil
}

// SellerArguments - arguments for RPC
type SellerArguments struct {
	Caller   account.Principal `json:"caller"`
	Seller   account.Principal `json:"seller"`
	Verified bool              `json:"verified"`
}

// VerifySeller - set or clear the verified seller role
func (credits *Credits) VerifySeller(arguments *SellerArguments, reply *ActionReply) error {

	if err := ratelimit.Limit(credits.Limiter); nil != err {
		return err
	}

	credits.Log.Infof("Credits.VerifySeller: %+v", arguments)

	err := credits.Ledger.SetSellerVerification(arguments.Caller, arguments.Seller, arguments.Verified)
	if nil != err {
		return err
	}
	reply.Status = statusOk
	return nil
}

// RoleArguments - arguments for RPC
type RoleArguments struct {
	Caller    account.Principal `json:"caller"`
	Role      access.Role       `json:"role"`
	Principal account.Principal `json:"principal"`
}

// GrantRole - add a role to a principal
func (credits *Credits) GrantRole(arguments *RoleArguments, reply *ActionReply) error {

	if err := ratelimit.Limit(credits.Limiter); nil != err {
		return err
	}

	credits.Log.Infof("Credits.GrantRole: %+v", arguments)

	err := credits.Ledger.GrantRole(arguments.Caller, arguments.Role, arguments.Principal)
	if nil != err {
		return err
	}
	reply.Status = statusOk
	return nil
}

// RevokeRole - remove a role from a principal
func (credits *Credits) RevokeRole(arguments *RoleArguments, reply *ActionReply) error {

	if err := ratelimit.Limit(credits.Limiter); nil != err {
		return err
	}

	credits.Log.Infof("Credits.RevokeRole: %+v", arguments)

	err := credits.Ledger.RevokeRole(arguments.Caller, arguments.Role, arguments.Principal)
	if nil != err {
		return err
	}
	reply.Status = statusOk
	return nil
}

// PriceArguments - arguments for RPC
type PriceArguments struct {
	Caller  account.Principal `json:"caller"`
	AssetId uint64            `json:"assetId"`
	Price   decimal.Decimal   `json:"price"`
}

// UpdatePrice - change the listed unit price of an asset
func (credits *Credits) UpdatePrice(arguments *PriceArguments, reply *ActionReply) error {

	if err := ratelimit.Limit(credits.Limiter); nil != err {
		return err
	}

	credits.Log.Infof("Credits.UpdatePrice: %+v", arguments)

	err := credits.Ledger.UpdatePrice(arguments.Caller, arguments.AssetId, arguments.Price)
	if nil != err {
		return err
	}
	reply.Status = statusOk
	return nil
}

// Queries
// -------

// AssetArguments - arguments for RPC
type AssetArguments struct {
	AssetId uint64 `json:"assetId"`
}

// AssetReply - an asset with its supply summary
type AssetReply struct {
	Asset  *ledger.Asset  `json:"asset"`
	Supply *ledger.Supply `json:"supply"`
}

// Get - fetch one asset
func (credits *Credits) Get(arguments *AssetArguments, reply *AssetReply) error {

	if err := ratelimit.Limit(credits.Limiter); nil != err {
		return err
	}

	a, err := credits.Ledger.Asset(arguments.AssetId)
	if nil != err {
		return err
	}
	s, err := credits.Ledger.Supply(arguments.AssetId)
	if nil != err {
		return err
	}

	reply.Asset = a
	reply.Supply = s
	return nil
}

// ListArguments - arguments for RPC
type ListArguments struct {
	Start uint64 `json:"start"`
	Count int    `json:"count"`
}

// ListReply - a page of assets
type ListReply struct {
	Assets []*ledger.Asset `json:"assets"`
	Next   uint64          `json:"next"`
}

// List - page through assets in id order
func (credits *Credits) List(arguments *ListArguments, reply *ListReply) error {

	if err := ratelimit.LimitN(credits.Limiter, arguments.Count, MaximumAssetsCount); nil != err {
		return err
	}

	assets, err := credits.Ledger.Assets(arguments.Start, arguments.Count)
	if nil != err {
		return err
	}

	reply.Assets = assets
	reply.Next = arguments.Start
	if n := len(assets); n > 0 {
		reply.Next = assets[n-1].Id + 1
	}
	return nil
}

// BalanceArguments - arguments for RPC
type BalanceArguments struct {
	Holder  account.Principal `json:"holder"`
	AssetId uint64            `json:"assetId"`
}

// BalanceReply - balance of one holder
type BalanceReply struct {
	Holder  account.Principal `json:"holder"`
	AssetId uint64            `json:"assetId"`
	Balance uint64            `json:"balance"`
}

// Balance - quantity held of one asset
func (credits *Credits) Balance(arguments *BalanceArguments, reply *BalanceReply) error {

	if err := ratelimit.Limit(credits.Limiter); nil != err {
		return err
	}

	balance, err := credits.Ledger.BalanceOf(arguments.Holder, arguments.AssetId)
	if nil != err {
		return err
	}

	reply.Holder = arguments.Holder
	reply.AssetId = arguments.AssetId
	reply.Balance = balance
	return nil
}

// HolderArguments - arguments for RPC
type HolderArguments struct {
	Holder account.Principal `json:"holder"`
}

// HoldingsReply - all non-zero balances of a holder
type HoldingsReply struct {
	Holdings []ledger.Holding `json:"holdings"`
}

// Holdings - list the non-zero balances of a holder
func (credits *Credits) Holdings(arguments *HolderArguments, reply *HoldingsReply) error {

	if err := ratelimit.Limit(credits.Limiter); nil != err {
		return err
	}

	holdings, err := credits.Ledger.Holdings(arguments.Holder)
	if nil != err {
		return err
	}
	reply.Holdings = holdings
	return nil
}

// RetirementsReply - retirement history of an asset
type RetirementsReply struct {
	Retirements []ledger.Retirement `json:"retirements"`
}

// Retirements - list retirement events of an asset
func (credits *Credits) Retirements(arguments *AssetArguments, reply *RetirementsReply) error {

	if err := ratelimit.Limit(credits.Limiter); nil != err {
		return err
	}

	retirements, err := credits.Ledger.Retirements(arguments.AssetId)
	if nil != err {
		return err
	}
	reply.Retirements = retirements
	return nil
}

// RolesArguments - arguments for RPC, either a principal or a role
type RolesArguments struct {
	Principal account.Principal `json:"principal"`
	Role      string            `json:"role"`
}

// RolesReply - roles of a principal or members of a role
type RolesReply struct {
	Roles   []access.Role       `json:"roles,omitempty"`
	Members []account.Principal `json:"members,omitempty"`
}

// Roles - list the roles of a principal or the members of a role
func (credits *Credits) Roles(arguments *RolesArguments, reply *RolesReply) error {

	if err := ratelimit.Limit(credits.Limiter); nil != err {
		return err
	}

	if "" != arguments.Role {
		role, err := access.ParseRole(arguments.Role)
		if nil != err {
			return err
		}
		reply.Members = credits.Registry.Members(role)
		return nil
	}

	if err := arguments.Principal.Validate(); nil != err {
		return fault.MissingParameters
	}
	reply.Roles = credits.Registry.Roles(arguments.Principal).Roles()
	return nil
}
