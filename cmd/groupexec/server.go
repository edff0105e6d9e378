package main

import (
	"encoding/json"

	"github.com/valyala/fasthttp"

	"github.com/fluxorio/groupexec/pkg/core/concurrency"
)

type poolsResponse struct {
	State              string                    `json:"state"`
	AssignedIdentities int                       `json:"assigned_identities"`
	Totals             concurrency.ExecutorStats `json:"totals"`
	Pools              []concurrency.PoolStats   `json:"pools"`
}

// newHandler routes the demo host endpoints:
//
//	GET /metrics  Prometheus exposition
//	GET /pools    per-pool snapshot as JSON
//	GET /healthz  200 while the group accepts work, 503 otherwise
func newHandler(group *concurrency.GroupExecutor, metrics fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if !ctx.IsGet() {
			ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
			return
		}

		switch string(ctx.Path()) {
		case "/metrics":
			metrics(ctx)
		case "/pools":
			writeJSON(ctx, fasthttp.StatusOK, poolsResponse{
				State:              group.State().String(),
				AssignedIdentities: group.AssignedIdentities(),
				Totals:             group.Stats(),
				Pools:              group.ListPools(),
			})
		case "/healthz":
			status := fasthttp.StatusOK
			if group.State() != concurrency.StateAccepting {
				status = fasthttp.StatusServiceUnavailable
			}
			writeJSON(ctx, status, map[string]string{"state": group.State().String()})
		default:
			ctx.Error("not found", fasthttp.StatusNotFound)
		}
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}
