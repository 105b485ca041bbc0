// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/ledger/app/services/node/handlers/v1/private"
	"github.com/ardanlabs/ledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/web"
	"go.uber.org/zap"
)

// The ledger routes are part of the peer wire contract so they are mounted
// at the root and not under a version group.
const version = ""

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Miner public.Miner
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		Miner: cfg.Miner,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodPost, version, "/transactions/new", pbl.SubmitTransaction)
	app.Handle(http.MethodGet, version, "/mine", pbl.Mine)
	app.Handle(http.MethodPost, version, "/nodes/register", pbl.RegisterNode)
	app.Handle(http.MethodGet, version, "/nodes/resolve", pbl.ResolveChain)
	app.Handle(http.MethodPost, version, "/get_other_nodes", pbl.DiscoverNodes)
	app.Handle(http.MethodGet, version, "/verify_signature", pbl.VerifySignature)
}

// PrivateRoutes binds all the version 1 routes peers call on each other.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodGet, version, "/chain", prv.Chain)
	app.Handle(http.MethodGet, version, "/transactions", prv.Mempool)
	app.Handle(http.MethodPost, version, "/transactions/add", prv.AddTransaction)
	app.Handle(http.MethodGet, version, "/nodes", prv.Nodes)
	app.Handle(http.MethodGet, version, "/uuid", prv.UUID)
	app.Handle(http.MethodGet, version, "/publickey", prv.PublicKey)
}
