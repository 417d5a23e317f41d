package interactions

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ticketboard/bot/internal/discord"
	"github.com/ticketboard/bot/internal/platform/metrics"
)

const maxInteractionBody = 1 << 20

var interactionsReceived = metrics.NewCounterVec(metrics.Opts{
	Name: "interactions_received_total",
	Help: "Interactions received, labeled by type and outcome.",
}, []string{"type", "outcome"})

func init() {
	metrics.Default.MustRegister(interactionsReceived)
}

type Handler struct {
	Service   *Service
	PublicKey ed25519.PublicKey
	Ready     func(ctx context.Context) error
}

func NewHandler(service *Service, publicKey ed25519.PublicKey, ready func(ctx context.Context) error) *Handler {
	return &Handler{Service: service, PublicKey: publicKey, Ready: ready}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", h.handleReadyz)
	r.Method(http.MethodGet, "/metrics", metrics.DefaultHandler())
	r.Post("/interactions", h.handleInteraction)
	return r
}

func (h *Handler) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if h.Ready != nil {
		if err := h.Ready(r.Context()); err != nil {
			h.writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *Handler) handleInteraction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxInteractionBody))
	if err != nil {
		interactionsReceived.WithLabelValues("unknown", "bad_request").Inc()
		h.writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	if !h.verifySignature(r, body) {
		interactionsReceived.WithLabelValues("unknown", "bad_signature").Inc()
		h.writeError(w, http.StatusUnauthorized, "invalid request signature")
		return
	}

	var in discord.Interaction
	if err := json.Unmarshal(body, &in); err != nil {
		interactionsReceived.WithLabelValues("unknown", "bad_request").Inc()
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	resp, err := h.Service.Handle(r.Context(), &in)
	if err != nil {
		if errors.Is(err, ErrUnsupportedInteraction) {
			interactionsReceived.WithLabelValues(interactionTypeName(in.Type), "unsupported").Inc()
			h.writeError(w, http.StatusBadRequest, "unsupported interaction")
			return
		}
		interactionsReceived.WithLabelValues(interactionTypeName(in.Type), "error").Inc()
		log.Printf("interaction %s failed: %v", in.ID, err)
		h.writeError(w, http.StatusInternalServerError, "interaction failed")
		return
	}

	interactionsReceived.WithLabelValues(interactionTypeName(in.Type), "ok").Inc()
	h.writeJSON(w, http.StatusOK, resp)
}

// verifySignature checks the hex-encoded ed25519 signature over the
// timestamp header concatenated with the raw body.
func (h *Handler) verifySignature(r *http.Request, body []byte) bool {
	sigHex := r.Header.Get("X-Signature-Ed25519")
	timestamp := r.Header.Get("X-Signature-Timestamp")
	if sigHex == "" || timestamp == "" {
		return false
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	message := make([]byte, 0, len(timestamp)+len(body))
	message = append(message, timestamp...)
	message = append(message, body...)
	return ed25519.Verify(h.PublicKey, message, sig)
}

func interactionTypeName(t int) string {
	switch t {
	case discord.InteractionPing:
		return "ping"
	case discord.InteractionCommand:
		return "command"
	case discord.InteractionComponent:
		return "component"
	case discord.InteractionAutocomplete:
		return "autocomplete"
	case discord.InteractionModalSubmit:
		return "modal"
	default:
		return "unknown"
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
