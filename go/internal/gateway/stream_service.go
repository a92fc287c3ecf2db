package gateway

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/mcdev12/livequiz/go/internal/progression"
	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ProgressionServiceName is the fully-qualified name of the progression service.
	ProgressionServiceName = "livequiz.v1.ProgressionService"
	// ProgressionServiceWatchProcedure is the path of the Watch server stream.
	ProgressionServiceWatchProcedure = "/" + ProgressionServiceName + "/Watch"
)

// StreamService exposes the progression stream as a connect server stream.
// The request carries the tournament id, every response one snapshot.
type StreamService struct {
	opener  *Opener
	manager *ConnectionManager
}

func NewStreamService(opener *Opener, manager *ConnectionManager) *StreamService {
	return &StreamService{
		opener:  opener,
		manager: manager,
	}
}

// Handler returns the mount path and handler of the service.
func (s *StreamService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	handler := connect.NewServerStreamHandler(
		ProgressionServiceWatchProcedure,
		s.Watch,
		opts...,
	)
	return "/" + ProgressionServiceName + "/", handler
}

func (s *StreamService) Watch(ctx context.Context, req *connect.Request[wrapperspb.StringValue], stream *connect.ServerStream[structpb.Struct]) error {
	session, err := s.opener.Open(ctx, req.Header(), req.Msg.GetValue(), TransportConnect)
	if err != nil {
		return connectError(err)
	}

	log.Info().
		Str("session_id", session.ID.String()).
		Str("user_id", session.UserID.String()).
		Str("tournament_id", session.Tournament.ID.String()).
		Msg("connect stream established")

	sink := SinkFunc(func(ctx context.Context, snapshot progression.Snapshot) error {
		msg, err := structpb.NewStruct(snapshot.Fields())
		if err != nil {
			return fmt.Errorf("convert snapshot: %w", err)
		}
		return stream.Send(msg)
	})

	if _, err := s.manager.Serve(ctx, session, sink); err != nil {
		if ctx.Err() != nil {
			// Client went away
			return nil
		}
		return connect.NewError(connect.CodeUnavailable, err)
	}
	return nil
}
