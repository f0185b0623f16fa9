// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"encoding/json"
	"fmt"
)

// trace output of requests and replies, only when verbose
func (client *Client) printJson(title string, message interface{}) {

	if !client.verbose || nil == client.handle {
		return
	}

	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		fmt.Fprintf(client.handle, "%s: marshal error: %s\n", title, err)
		return
	}
	fmt.Fprintf(client.handle, "%s:\n%s\n", title, b)
}
