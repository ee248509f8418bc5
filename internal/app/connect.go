package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"rtcports/internal/core"
	"rtcports/internal/types"
)

// Connect connects the source port to every destination and reports the
// newest connection between them.
func (s Service) Connect(ctx context.Context, req ConnectRequest) (ConnectResult, error) {
	source := strings.TrimSpace(req.Source)
	if source == "" || len(req.Destinations) == 0 {
		return ConnectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("source and at least one destination are required")
	}
	tree, err := s.tree(ctx)
	if err != nil {
		return ConnectResult{}, err
	}
	src, err := s.resolvePort(ctx, tree, source)
	if err != nil {
		return ConnectResult{}, err
	}
	dests := make([]*core.Port, 0, len(req.Destinations))
	for _, path := range req.Destinations {
		dest, err := s.resolvePort(ctx, tree, strings.TrimSpace(path))
		if err != nil {
			return ConnectResult{}, err
		}
		dests = append(dests, dest)
	}

	err = src.Connect(ctx, dests, core.ConnectOptions{
		Name:       req.Name,
		ID:         req.ID,
		Properties: types.NewProperties(req.Properties...),
	})
	s.Metrics.observeConnect(src.Kind(), err)
	if err != nil {
		return ConnectResult{}, err
	}

	var conn *core.Connection
	if req.ID != "" {
		conn, err = src.ConnectionByID(ctx, req.ID)
	} else {
		var conns []*core.Connection
		conns, err = src.ConnectionsWith(ctx, dests...)
		if len(conns) > 0 {
			conn = conns[len(conns)-1]
		}
	}
	if err != nil {
		return ConnectResult{}, err
	}
	if conn == nil {
		return ConnectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("connection from %s not reported by the framework", source))
	}
	summary, err := summarizeConnection(ctx, conn)
	if err != nil {
		return ConnectResult{}, err
	}
	log.Ctx(ctx).Info().Str("source", source).Str("connection", summary.ID).Msg("connected")
	return ConnectResult{Connection: summary}, nil
}

func (s Service) Disconnect(ctx context.Context, req DisconnectRequest) (DisconnectResult, error) {
	tree, err := s.tree(ctx)
	if err != nil {
		return DisconnectResult{}, err
	}
	port, err := s.resolvePort(ctx, tree, strings.TrimSpace(req.PortPath))
	if err != nil {
		return DisconnectResult{}, err
	}

	if req.ConnectionID == "" {
		conns, err := port.Connections(ctx)
		if err != nil {
			return DisconnectResult{}, err
		}
		err = port.DisconnectAll(ctx)
		s.Metrics.observeDisconnect(err)
		if err != nil {
			return DisconnectResult{}, err
		}
		return DisconnectResult{Removed: len(conns)}, nil
	}

	conn, err := port.ConnectionByID(ctx, req.ConnectionID)
	if err != nil {
		return DisconnectResult{}, err
	}
	if conn == nil {
		return DisconnectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("port %s has no connection %s", req.PortPath, req.ConnectionID))
	}
	err = conn.Disconnect(ctx)
	s.Metrics.observeDisconnect(err)
	if err != nil {
		return DisconnectResult{}, err
	}
	return DisconnectResult{Removed: 1}, nil
}
