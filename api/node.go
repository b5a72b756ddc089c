// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"

	"github.com/gurufinglobal/guruxkeeper/api/utils"
	"github.com/gurufinglobal/guruxkeeper/solo"
)

type node struct {
	chain *solo.Chain
}

func newNode(chain *solo.Chain) *node {
	return &node{chain}
}

type Status struct {
	ChainID     *hexutil.Big     `json:"chainId"`
	BlockNumber uint64           `json:"blockNumber"`
	GasPrice    *hexutil.Big     `json:"gasPrice"`
	Accounts    []common.Address `json:"accounts"`
}

func (n *node) handleStatus(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, &Status{
		ChainID:     (*hexutil.Big)(n.chain.ChainID()),
		BlockNumber: n.chain.BlockNumber(),
		GasPrice:    (*hexutil.Big)(n.chain.GasPrice()),
		Accounts:    n.chain.Accounts(),
	})
}

func (n *node) handleAccountBalance(w http.ResponseWriter, req *http.Request) error {
	hex := mux.Vars(req)["address"]
	if !common.IsHexAddress(hex) {
		return utils.BadRequest(errInvalidAddress)
	}
	bal, err := n.chain.Balance(common.HexToAddress(hex))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, map[string]*hexutil.Big{"balance": (*hexutil.Big)(bal)})
}

func (n *node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/status").
		Methods(http.MethodGet).
		Name("GET /node/status").
		HandlerFunc(utils.WrapHandlerFunc(n.handleStatus))
	sub.Path("/accounts/{address}/balance").
		Methods(http.MethodGet).
		Name("GET /node/accounts/{address}/balance").
		HandlerFunc(utils.WrapHandlerFunc(n.handleAccountBalance))
}
