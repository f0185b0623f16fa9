// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/reservoir"
	"github.com/grun-exchange/creditd/rpc/purchase"
)

// StartData - the parameters for starting a purchase
type StartData struct {
	Buyer    account.Principal
	AssetId  uint64
	Quantity uint64
}

// Initiate - reserve units and create a settlement
func (client *Client) Initiate(data *StartData) (*purchase.RecordReply, error) {
	return client.start("Purchase.Initiate", data)
}

// Buy - run a complete purchase
func (client *Client) Buy(data *StartData) (*purchase.RecordReply, error) {
	return client.start("Purchase.Buy", data)
}

func (client *Client) start(method string, data *StartData) (*purchase.RecordReply, error) {
	arguments := &purchase.StartArguments{
		Buyer:    data.Buyer,
		AssetId:  data.AssetId,
		Quantity: data.Quantity,
	}
	reply := &purchase.RecordReply{}
	if err := client.call(method, arguments, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// Step - advance an existing settlement
//
// step is one of: Authorise, Submit, Poll, Cancel
func (client *Client) Step(step string, id string) (*purchase.RecordReply, error) {
	reply := &purchase.RecordReply{}
	if err := client.call("Purchase."+step, &purchase.IdArguments{Id: id}, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// GetSettlement - fetch a settlement and its order
func (client *Client) GetSettlement(id string) (*purchase.GetReply, error) {
	reply := &purchase.GetReply{}
	if err := client.call("Purchase.Get", &purchase.IdArguments{Id: id}, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// ListSettlements - settlements of a buyer
func (client *Client) ListSettlements(buyer account.Principal) (*purchase.ListReply, error) {
	reply := &purchase.ListReply{}
	if err := client.call("Purchase.List", &purchase.ListArguments{Buyer: buyer}, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// Availability - balance, reserved and available units of a batch
func (client *Client) Availability(assetId uint64) (*reservoir.BalanceInfo, error) {
	reply := &reservoir.BalanceInfo{}
	if err := client.call("Purchase.Availability", &purchase.AvailabilityArguments{AssetId: assetId}, reply); nil != err {
		return nil, err
	}
	return reply, nil
}
