// Package session implements the MCP session protocol engine: the state
// machine that performs the initialize handshake, the typed client
// operations, and the built-in bidirectional handlers, wired on top of
// the correlator and dispatcher packages.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	// Packages
	correlator "github.com/mutablelogic/go-mcp/pkg/mcp/correlator"
	dispatcher "github.com/mutablelogic/go-mcp/pkg/mcp/dispatcher"
	roots "github.com/mutablelogic/go-mcp/pkg/mcp/roots"
	schema "github.com/mutablelogic/go-mcp/pkg/mcp/schema"
	transport "github.com/mutablelogic/go-mcp/pkg/mcp/transport"
	uuid "github.com/google/uuid"
	errgroup "golang.org/x/sync/errgroup"
	otel "go.opentelemetry.io/otel"
	trace "go.opentelemetry.io/otel/trace"
)

////////////////////////////////////////////////////////////////////////////
// TYPES

// State is the session's lifecycle position. Only Initialized permits
// user-facing operations other than initialize and ping.
type State int

const (
	Disconnected State = iota
	Connecting
	Initialized
	Closing
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Initialized:
		return "initialized"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session drives one MCP client/server conversation over a single
// transport. Create one with New and Start, issue typed operations while
// it reports Initialized, and Close it when done.
type Session struct {
	id uuid.UUID

	transport      transport.Transport
	dispatcher     *dispatcher.Dispatcher
	correlator     *correlator.Correlator
	requestTimeout time.Duration
	clientInfo     schema.ClientInfo
	logger         *log.Logger
	tracer         trace.Tracer

	explicitCapabilities *schema.ClientCapabilities
	samplingHandler      SamplingHandler

	toolsConsumers     []ToolsChangeConsumer
	resourcesConsumers []ResourcesChangeConsumer
	promptsConsumers   []PromptsChangeConsumer
	loggingConsumer    LoggingConsumer
	progressConsumer   ProgressConsumer

	subsMu       sync.Mutex
	resourceSubs map[string]ResourceUpdatedConsumer

	initialRoots []schema.Root
	rootRegistry *roots.Registry

	stateMu    sync.Mutex
	state      State
	serverInfo schema.ServerInfo
	serverCaps schema.ServerCapabilities

	fanout   *fanout
	inFlight *inFlight

	eg        *errgroup.Group
	cancelBg  context.CancelFunc
	closeOnce sync.Once
}

////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// DefaultRequestTimeout is applied when WithRequestTimeout is not
	// supplied.
	DefaultRequestTimeout = 20 * time.Second

	// defaultClientName/Version are used when WithClientInfo is omitted.
	defaultClientName    = "go-mcp"
	defaultClientVersion = "0.1.0"

	// expirySweepInterval is how often the correlator is swept for timed
	// out awaiters.
	expirySweepInterval = 250 * time.Millisecond
)

////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New builds a Session from opts. WithTransport is required. The session
// starts in the Disconnected state; call Start to run the handshake.
func New(opts ...Opt) (*Session, error) {
	s := &Session{
		id:             uuid.New(),
		requestTimeout: DefaultRequestTimeout,
		clientInfo:     schema.ClientInfo{Name: defaultClientName, Version: defaultClientVersion},
		logger:         log.Default(),
		tracer:         otel.Tracer("github.com/mutablelogic/go-mcp/pkg/mcp/session"),
		resourceSubs:   make(map[string]ResourceUpdatedConsumer),
		state:          Disconnected,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.transport == nil {
		return nil, fmt.Errorf("mcp: session: WithTransport is required")
	}

	s.correlator = correlator.New(s.emitCancelled)
	s.fanout = newFanout(s)
	s.inFlight = newInFlight()
	s.rootRegistry = roots.New(s.emitRootsChanged, s.initialRoots...)

	return s, nil
}

// ID returns the opaque, log-only identifier for this session. It has no
// protocol meaning and is never sent on the wire.
func (s *Session) ID() string {
	return s.id.String()
}

// State reports the session's current lifecycle position.
func (s *Session) State() State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

// ServerInfo returns the identity captured from the initialize response.
// Only meaningful once State is Initialized.
func (s *Session) ServerInfo() schema.ServerInfo {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.serverInfo
}

// ServerCapabilities returns the capability set captured from the
// initialize response. Immutable for the session's lifetime once set.
func (s *Session) ServerCapabilities() schema.ServerCapabilities {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.serverCaps
}

// Start connects the transport, registers the built-in handlers, performs
// the initialize handshake, and — on success — sends
// notifications/initialized and transitions to Initialized. On failure it
// transitions to Closing, closes the transport, and fails any awaiters.
func (s *Session) Start(ctx context.Context) error {
	s.setState(Connecting)

	s.dispatcher = dispatcher.New(s.transport, s.handleResponse, s.handleFatal, s.logger)
	s.registerBuiltins()

	if err := s.dispatcher.Start(ctx); err != nil {
		s.failStartup(fmt.Errorf("mcp: session: transport connect failed: %w", err))
		return err
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	s.cancelBg = cancel
	s.eg, _ = errgroup.WithContext(bgCtx)
	s.eg.Go(func() error {
		s.runExpirySweep(bgCtx)
		return nil
	})

	if err := s.handshake(ctx); err != nil {
		s.failStartup(err)
		return err
	}

	s.setState(Initialized)
	return nil
}

func (s *Session) handshake(ctx context.Context) error {
	params, err := json.Marshal(schema.InitializeParams{
		ProtocolVersion: schema.LatestProtocolVersion,
		Capabilities:    s.deriveClientCapabilities(),
		ClientInfo:      s.clientInfo,
	})
	if err != nil {
		return fmt.Errorf("mcp: session: encode initialize params: %w", err)
	}

	raw, err := s.call(ctx, schema.MethodInitialize, params)
	if err != nil {
		return fmt.Errorf("mcp: session: initialize failed: %w", err)
	}

	var result schema.InitializeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("mcp: session: decode initialize result: %w", err)
	}

	if !schema.IsSupportedProtocolVersion(result.ProtocolVersion) {
		return ErrProtocolVersion.Withf("server offered %q, supported: %v", result.ProtocolVersion, schema.SupportedProtocolVersions)
	}

	s.stateMu.Lock()
	s.serverInfo = result.ServerInfo
	s.serverCaps = result.Capabilities
	s.stateMu.Unlock()

	notifParams, _ := json.Marshal(struct{}{})
	if err := s.dispatcher.Send(ctx, schema.NewNotification(schema.NotificationInitialized, notifParams)); err != nil {
		return fmt.Errorf("mcp: session: sending notifications/initialized: %w", err)
	}

	return nil
}

func (s *Session) deriveClientCapabilities() schema.ClientCapabilities {
	if s.explicitCapabilities != nil {
		return *s.explicitCapabilities
	}

	var caps schema.ClientCapabilities

	if s.rootRegistry.Len() > 0 {
		caps.Roots = &schema.RootsCapability{ListChanged: true}
	}

	if s.samplingHandler != nil {
		caps.Sampling = map[string]any{}
	}

	return caps
}

func (s *Session) failStartup(cause error) {
	s.setState(Closing)
	_ = s.transport.Close()
	s.correlator.Shutdown(cause)
	s.setState(Closed)
}

// Close severs the session: it stops the background sweep, shuts down
// the correlator (failing every remaining awaiter with "session closed"),
// and closes the transport. Calling Close more than once is a no-op after
// the first call.
func (s *Session) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		s.setState(Closing)
		if s.cancelBg != nil {
			s.cancelBg()
		}
		if s.eg != nil {
			_ = s.eg.Wait()
		}
		s.correlator.Shutdown(ErrSessionClosed)
		s.fanout.stop()
		closeErr = s.transport.Close()
		s.setState(Closed)
	})
	return closeErr
}

func (s *Session) setState(st State) {
	s.stateMu.Lock()
	s.state = st
	s.stateMu.Unlock()
}

func (s *Session) runExpirySweep(ctx context.Context) {
	ticker := time.NewTicker(expirySweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.correlator.Expire(now, ErrTimeout)
		}
	}
}

// handleFatal is invoked by the dispatcher when an outbound write fails;
// a transport that can no longer be trusted to deliver writes cannot be
// trusted to deliver reads either, so the whole session is torn down.
func (s *Session) handleFatal(cause error) {
	s.logger.Printf("mcp: session %s: fatal transport error: %v", s.ID(), cause)
	go func() {
		_ = s.Close()
	}()
}

// handleResponse matches an inbound Response/ErrorResponse to its
// correlator awaiter. Unknown ids are logged and dropped rather than
// treated as fatal: a late response after a client-side timeout is an
// expected race, not a protocol violation.
func (s *Session) handleResponse(id schema.ID, result json.RawMessage, rpcErr error) {
	if !s.correlator.Complete(id, result, rpcErr) {
		s.logger.Printf("mcp: session %s: dropping response for unknown id %s", s.ID(), id)
	}
}

// Roots returns the client's current root set, in stable insertion order.
func (s *Session) Roots() []schema.Root {
	return s.rootRegistry.List()
}

// AddRoot registers root at runtime, overwriting any existing entry for
// the same uri, and — once the session is Initialized — notifies the
// server via notifications/roots/list_changed.
func (s *Session) AddRoot(root schema.Root) {
	s.rootRegistry.Add(root)
}

// RemoveRoot drops the root at uri, if present, and notifies the server
// once the session is Initialized. It reports whether a root was removed.
func (s *Session) RemoveRoot(uri string) bool {
	return s.rootRegistry.Remove(uri)
}

// emitRootsChanged is the roots.Registry change callback: it fans the
// server notification out onto the roots queue so a slow send never stalls
// the caller mutating the registry.
func (s *Session) emitRootsChanged() {
	s.stateMu.Lock()
	ready := s.state == Initialized
	s.stateMu.Unlock()
	if !ready {
		return
	}

	s.fanout.submitKind(fanoutRoots, func() {
		params, _ := json.Marshal(struct{}{})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.dispatcher.Send(ctx, schema.NewNotification(schema.NotificationRootsListChanged, params)); err != nil {
			s.logger.Printf("mcp: session %s: failed sending notifications/roots/list_changed: %v", s.ID(), err)
		}
	})
}

// emitCancelled sends notifications/cancelled for an awaiter the
// correlator just expired or cancelled locally.
func (s *Session) emitCancelled(id schema.ID, reason string) {
	params, err := json.Marshal(schema.CancelledParams{RequestID: id, Reason: reason})
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.dispatcher.Send(ctx, schema.NewNotification(schema.NotificationCancelled, params)); err != nil {
		s.logger.Printf("mcp: session %s: failed sending notifications/cancelled for %s: %v", s.ID(), id, err)
	}
}
