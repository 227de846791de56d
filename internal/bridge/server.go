package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"

	"github.com/vk/restobridge/internal/config"
	"github.com/vk/restobridge/internal/ctxlog"
	"github.com/vk/restobridge/internal/restore"
)

// Event names shared with the webview UI.
const (
	eventModify   = "modify_photo"
	eventProgress = "modify_progress"
	eventResult   = "modify_result"
	eventError    = "modify_error"
)

// Server runs the local socket.io endpoint the webview UI talks to. One
// Server owns one restore.Pipeline; concurrent modify_photo requests each
// get their own goroutine and run identifier.
type Server struct {
	port     int
	defaults config.PipelineSettings
	pipeline *restore.Pipeline
	logger   *slog.Logger
	io       *socket.Server
	http     *types.HttpServer
}

// New builds a Server from the merged application settings.
func New(settings config.Settings, logger *slog.Logger) *Server {
	s := &Server{
		port:     settings.Bridge.Port,
		defaults: settings.Pipeline,
		logger:   logger,
	}
	s.pipeline = restore.NewPipeline(settings.Pipeline.Root, settings.Pipeline.Script, s.emitProgress)
	return s
}

// Run starts the bridge and blocks until ctx is cancelled. The listener is
// bound to loopback only; the bridge is a local companion process, not a
// network service.
func (s *Server) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, s.logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)

	httpServer := types.CreateServer(mux)
	s.io = socket.NewServer(httpServer, nil)

	s.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		s.logger.Info("UI client connected.", "sid", client.Id())

		client.On(eventModify, func(datas ...any) {
			var raw any
			if len(datas) > 0 {
				raw = datas[0]
			}
			s.handleModify(ctx, raw)
		})

		client.On("disconnect", func(...any) {
			s.logger.Debug("UI client disconnected.", "sid", client.Id())
		})
	})

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	s.logger.Info("🛰 Bridge server starting", "address", fmt.Sprintf("http://%s/socket.io/", addr))
	s.http = httpServer
	httpServer.Listen(addr, nil)

	<-ctx.Done()
	s.logger.Info("Bridge server shutting down...")
	s.io.Close(nil)
	s.http.Close(nil)
	return nil
}

// healthHandler reports liveness to the shell that spawned the bridge.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// handleModify validates one modify_photo request and starts its run.
func (s *Server) handleModify(ctx context.Context, raw any) {
	logger := ctxlog.FromContext(ctx)

	req, err := decodeArgs(raw, s.defaults)
	if err != nil {
		logger.Warn("Rejected modify_photo request.", "error", err)
		s.io.Emit(eventError, map[string]any{"runId": req.RunID, "error": err.Error()})
		return
	}

	// One goroutine per run. Once the worker is spawned the run cannot be
	// aborted; the UI observes progress but has no cancel path.
	go s.runModify(ctx, req)
}

// runModify executes one run and reports its terminal outcome to the UI.
func (s *Server) runModify(ctx context.Context, req restore.Request) {
	logger := ctxlog.FromContext(ctx).With("run_id", req.RunID)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Run goroutine panicked.", "panic", r)
			s.io.Emit(eventError, map[string]any{
				"runId": req.RunID,
				"error": fmt.Sprintf("Task failed: %v", r),
			})
		}
	}()

	res, err := s.pipeline.Modify(ctx, req)
	if err != nil {
		s.io.Emit(eventError, map[string]any{"runId": req.RunID, "error": err.Error()})
		return
	}
	s.io.Emit(eventResult, map[string]any{"runId": req.RunID, "outputPath": res.OutputPath})
}

// emitProgress broadcasts one progress event to every connected client.
// The UI filters by runId.
func (s *Server) emitProgress(ev restore.Event) {
	if s.io == nil {
		return
	}
	s.io.Emit(eventProgress, progressPayload(ev))
}
