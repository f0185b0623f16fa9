// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"github.com/grun-exchange/creditd/rpc/credits"
)

// Mint - issue a new credit batch
func (client *Client) Mint(arguments *credits.MintArguments) (*credits.MintReply, error) {
	reply := &credits.MintReply{}
	if err := client.call("Credits.Mint", arguments, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// Transfer - move units between holders
func (client *Client) Transfer(arguments *credits.TransferArguments) (*credits.ActionReply, error) {
	reply := &credits.ActionReply{}
	if err := client.call("Credits.Transfer", arguments, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// Approve - set or clear an operator approval
func (client *Client) Approve(arguments *credits.ApprovalArguments) (*credits.ActionReply, error) {
	reply := &credits.ActionReply{}
	if err := client.call("Credits.Approve", arguments, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// Retire - destroy units held by the caller
func (client *Client) Retire(arguments *credits.RetireArguments) (*credits.RetireReply, error) {
	reply := &credits.RetireReply{}
	if err := client.call("Credits.Retire", arguments, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// Review - approve or reject a pending batch
func (client *Client) Review(arguments *credits.ReviewArguments) (*credits.ActionReply, error) {
	reply := &credits.ActionReply{}
	if err := client.call("Credits.Review", arguments, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// VerifySeller - mark or unmark a seller as verified
func (client *Client) VerifySeller(arguments *credits.SellerArguments) (*credits.ActionReply, error) {
	reply := &credits.ActionReply{}
	if err := client.call("Credits.VerifySeller", arguments, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// GrantRole - add a role to a principal
func (client *Client) GrantRole(arguments *credits.RoleArguments) (*credits.ActionReply, error) {
	reply := &credits.ActionReply{}
	if err := client.call("Credits.GrantRole", arguments, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// RevokeRole - remove a role from a principal
func (client *Client) RevokeRole(arguments *credits.RoleArguments) (*credits.ActionReply, error) {
	reply := &credits.ActionReply{}
	if err := client.call("Credits.RevokeRole", arguments, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// UpdatePrice - change the unit price of a batch
func (client *Client) UpdatePrice(arguments *credits.PriceArguments) (*credits.ActionReply, error) {
	reply := &credits.ActionReply{}
	if err := client.call("Credits.UpdatePrice", arguments, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// GetAsset - fetch one batch and its supply
func (client *Client) GetAsset(assetId uint64) (*credits.AssetReply, error) {
	reply := &credits.AssetReply{}
	if err := client.call("Credits.Get", &credits.AssetArguments{AssetId: assetId}, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// ListAssets - fetch a page of batches
func (client *Client) ListAssets(start uint64, count int) (*credits.ListReply, error) {
	arguments := &credits.ListArguments{
		Start: start,
		Count: count,
	}
	reply := &credits.ListReply{}
	if err := client.call("Credits.List", arguments, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// Balance - units of a batch held by a holder
func (client *Client) Balance(arguments *credits.BalanceArguments) (*credits.BalanceReply, error) {
	reply := &credits.BalanceReply{}
	if err := client.call("Credits.Balance", arguments, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// Holdings - all non-zero balances of a holder
func (client *Client) Holdings(arguments *credits.HolderArguments) (*credits.HoldingsReply, error) {
	reply := &credits.HoldingsReply{}
	if err := client.call("Credits.Holdings", arguments, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// Retirements - retirement events of a batch
func (client *Client) Retirements(assetId uint64) (*credits.RetirementsReply, error) {
	reply := &credits.RetirementsReply{}
	if err := client.call("Credits.Retirements", &credits.AssetArguments{AssetId: assetId}, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// Roles - roles of a principal or members of a role
func (client *Client) Roles(arguments *credits.RolesArguments) (*credits.RolesReply, error) {
	reply := &credits.RolesReply{}
	if err := client.call("Credits.Roles", arguments, reply); nil != err {
		return nil, err
	}
	return reply, nil
}
