// Package bridge relays call audio between the carrier's media-stream
// WebSocket and the conversational agent service, one session per call.
package bridge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ridgelineroofing/voicebridge/pkg/agentconfig"
)

// State is a session's position in its lifecycle.
type State int32

const (
	StateConnecting State = iota
	StateAgentHandshaking
	StateActive
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAgentHandshaking:
		return "agent-handshaking"
	case StateActive:
		return "active"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Conn is the subset of *websocket.Conn a session uses. Tests substitute
// channel-backed fakes.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// AgentDialer opens the agent-service socket for one call's settings.
type AgentDialer interface {
	DialAgent(ctx context.Context, settings agentconfig.AgentSettings) (Conn, error)
}

const (
	// Either socket closing must take the other down within this bound.
	teardownBound = 5 * time.Second

	outboundQueueSize = 64
)

// outboundFrame is one carrier-bound message. A clear frame interrupts
// playback; an audio frame extends it. Frames leave in queue order, which is
// what makes barge-in correct.
type outboundFrame struct {
	clear bool
	audio []byte
}

// Session relays one call. It is created when the carrier's media stream
// connects and is gone when both sockets are closed; nothing about it is
// shared across calls.
type Session struct {
	id      string
	carrier Conn
	dialer  AgentDialer
	log     *zap.Logger

	agent     Conn
	agentMu   sync.Mutex // serializes agent-socket writes
	settings  agentconfig.AgentSettings
	callSID   string
	streamSID string

	bufMu   sync.Mutex
	inbound *audioBuffer

	outbound chan outboundFrame

	state     atomic.Int32
	drainOnce sync.Once

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSession wraps a freshly accepted carrier connection.
func NewSession(carrier Conn, dialer AgentDialer, log *zap.Logger) *Session {
	id := uuid.NewString()
	s := &Session{
		id:       id,
		carrier:  carrier,
		dialer:   dialer,
		log:      log.With(zap.String("session_id", id)),
		outbound: make(chan outboundFrame, outboundQueueSize),
	}
	s.state.Store(int32(StateConnecting))
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(next State) {
	s.state.Store(int32(next))
	s.log.Debug("session state", zap.String("state", next.String()))
}

// Run drives the session until both sockets are closed. It blocks for the
// lifetime of the call.
func (s *Session) Run(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	defer func() {
		s.beginDrain()
		s.setState(StateClosed)
	}()

	start, err := s.awaitStart()
	if err != nil {
		return err
	}
	s.streamSID = start.StreamSid
	s.callSID = start.CallSid
	s.log = s.log.With(
		zap.String("call_sid", s.callSID),
		zap.String("stream_sid", s.streamSID))

	settings, err := agentconfig.DecodeToken(start.CustomParameters["settings"])
	if err != nil {
		return fmt.Errorf("media stream started without usable settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	s.settings = settings
	s.inbound = newAudioBuffer(bufferThreshold(
		settings.Audio.InputEncoding, settings.Audio.InputSampleRate))

	s.setState(StateAgentHandshaking)
	agent, err := s.dialer.DialAgent(s.ctx, settings)
	if err != nil {
		return fmt.Errorf("agent dial: %w", err)
	}
	s.agent = agent

	doc, err := json.Marshal(newSettingsMessage(settings))
	if err != nil {
		return fmt.Errorf("encode agent settings: %w", err)
	}
	if err := s.writeAgent(websocket.TextMessage, doc); err != nil {
		return fmt.Errorf("send agent settings: %w", err)
	}

	s.setState(StateActive)
	s.log.Info("session active")

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); s.carrierReadLoop() }()
	go func() { defer wg.Done(); s.agentReadLoop() }()
	go func() { defer wg.Done(); s.carrierWriteLoop() }()
	wg.Wait()
	return nil
}

// awaitStart consumes carrier frames until the start event arrives.
func (s *Session) awaitStart() (*startPayload, error) {
	for {
		select {
		case <-s.ctx.Done():
			return nil, s.ctx.Err()
		default:
		}

		_, data, err := s.carrier.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("carrier closed before stream start: %w", err)
		}
		var ev carrierEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			s.dropFrame("carrier", "undecodable frame before start")
			continue
		}
		switch ev.Event {
		case "connected":
			// protocol preamble
		case "start":
			if ev.Start == nil {
				return nil, &ProtocolError{Side: "carrier", Reason: "start event without payload"}
			}
			return ev.Start, nil
		default:
			s.dropFrame("carrier", "unexpected "+ev.Event+" before start")
		}
	}
}

// carrierReadLoop forwards buffered caller audio to the agent until the
// carrier stops or fails. It owns the inbound buffer's happy path.
func (s *Session) carrierReadLoop() {
	defer s.beginDrain()
	for {
		_, data, err := s.carrier.ReadMessage()
		if err != nil {
			if s.State() == StateActive {
				s.log.Info("carrier socket closed", zap.Error(err))
			}
			return
		}

		var ev carrierEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			s.dropFrame("carrier", "undecodable frame")
			continue
		}
		switch ev.Event {
		case "media":
			if ev.Media == nil {
				s.dropFrame("carrier", "media event without payload")
				continue
			}
			// The carrier echoes our own playback on the outbound track.
			if ev.Media.Track != "inbound" {
				continue
			}
			audio, err := base64.StdEncoding.DecodeString(ev.Media.Payload)
			if err != nil {
				s.dropFrame("carrier", "undecodable media payload")
				continue
			}
			s.bufMu.Lock()
			chunk := s.inbound.Add(audio)
			s.bufMu.Unlock()
			if chunk != nil {
				if err := s.writeAgent(websocket.BinaryMessage, chunk); err != nil {
					s.log.Warn("agent write failed", zap.Error(err))
					return
				}
			}
		case "stop":
			s.log.Info("carrier stream stopped")
			return
		case "mark", "connected", "start":
			// nothing to do
		default:
			s.dropFrame("carrier", "unknown event "+ev.Event)
		}
	}
}

// agentReadLoop turns agent output into carrier-bound frames. Enqueueing a
// clear before any subsequent audio of the same turn is what the barge-in
// ordering guarantee rests on.
func (s *Session) agentReadLoop() {
	defer s.beginDrain()
	for {
		messageType, data, err := s.agent.ReadMessage()
		if err != nil {
			if s.State() == StateActive {
				s.log.Warn("agent socket closed unexpectedly", zap.Error(err))
			}
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			audio := data
			if s.settings.Audio.OutputEncoding == "linear16" {
				audio, err = transcodeToMulaw(data, s.settings.Audio.OutputSampleRate)
				if err != nil {
					s.dropFrame("agent", "untranscodable audio frame")
					continue
				}
			}
			if len(audio) == 0 {
				continue
			}
			if !s.enqueue(outboundFrame{audio: audio}) {
				return
			}
		case websocket.TextMessage:
			var ctl agentControl
			if err := json.Unmarshal(data, &ctl); err != nil {
				s.dropFrame("agent", "undecodable control frame")
				continue
			}
			switch ctl.Type {
			case agentUserStartedSpeaking:
				if !s.enqueue(outboundFrame{clear: true}) {
					return
				}
			case agentError:
				s.log.Warn("agent reported error", zap.String("description", ctl.Description))
			case agentWelcome, agentSettingsApplied:
				s.log.Debug("agent handshake message", zap.String("type", ctl.Type))
			default:
				s.log.Debug("unhandled agent control", zap.String("type", ctl.Type))
			}
		}
	}
}

// carrierWriteLoop is the only writer on the carrier socket; consuming the
// queue in order preserves clear-before-audio.
func (s *Session) carrierWriteLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case frame := <-s.outbound:
			var msg any
			if frame.clear {
				msg = clearMessage{Event: "clear", StreamSid: s.streamSID}
			} else {
				msg = outboundMedia{
					Event:     "media",
					StreamSid: s.streamSID,
					Media: mediaPayload{
						Payload: base64.StdEncoding.EncodeToString(frame.audio),
					},
				}
			}
			data, err := json.Marshal(msg)
			if err != nil {
				s.log.Error("encode carrier frame", zap.Error(err))
				continue
			}
			s.carrier.SetWriteDeadline(time.Now().Add(teardownBound))
			if err := s.carrier.WriteMessage(websocket.TextMessage, data); err != nil {
				s.log.Warn("carrier write failed", zap.Error(err))
				s.beginDrain()
				return
			}
		}
	}
}

// enqueue adds a carrier-bound frame, backing off only for session shutdown.
// Blocking on a full queue keeps frame order intact; dropping would not.
func (s *Session) enqueue(frame outboundFrame) bool {
	select {
	case s.outbound <- frame:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// writeAgent serializes writes to the agent socket under the teardown bound.
func (s *Session) writeAgent(messageType int, data []byte) error {
	s.agentMu.Lock()
	defer s.agentMu.Unlock()
	s.agent.SetWriteDeadline(time.Now().Add(teardownBound))
	return s.agent.WriteMessage(messageType, data)
}

// dropFrame logs a protocol violation; the session continues.
func (s *Session) dropFrame(side, reason string) {
	s.log.Warn("dropping frame", zap.Error(&ProtocolError{Side: side, Reason: reason}))
}

// beginDrain starts teardown exactly once: flush the partial inbound buffer,
// cancel the session, and close both sockets so every loop unblocks.
func (s *Session) beginDrain() {
	s.drainOnce.Do(func() {
		if st := s.State(); st == StateActive || st == StateAgentHandshaking {
			s.setState(StateDraining)
		}

		if s.agent != nil && s.inbound != nil {
			s.bufMu.Lock()
			rest := s.inbound.Flush()
			s.bufMu.Unlock()
			if rest != nil {
				if err := s.writeAgent(websocket.BinaryMessage, rest); err != nil {
					s.log.Debug("partial buffer flush failed", zap.Error(err))
				}
			}
		}

		s.cancel()
		if s.agent != nil {
			s.agent.Close()
		}
		s.carrier.Close()
	})
}
