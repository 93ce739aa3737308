package server

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"github.com/dna-dev/dna/internal/errors"
	"github.com/dna-dev/dna/pkg/component"
	"github.com/dna-dev/dna/pkg/property"
	"github.com/dna-dev/dna/pkg/protocol"
	"github.com/dna-dev/dna/pkg/registry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ElementInfo describes a registered definition.
type ElementInfo struct {
	Tag                string         `json:"tag"`
	Extends            string         `json:"extends,omitempty"`
	Interface          string         `json:"interface,omitempty"`
	Properties         []PropertyInfo `json:"properties"`
	ObservedAttributes []string       `json:"observedAttributes"`
}

// PropertyInfo describes a declared property.
type PropertyInfo struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Attribute string `json:"attribute,omitempty"`
	Reflect   bool   `json:"reflect,omitempty"`
	State     bool   `json:"state,omitempty"`
}

// ElementsResponse is the body of GET /elements.
type ElementsResponse struct {
	Elements []ElementInfo      `json:"elements"`
	Builtins []registry.Builtin `json:"builtins"`
}

// Describe converts a registry entry for listings.
func Describe(entry registry.Entry) ElementInfo {
	def := entry.Definition
	info := ElementInfo{
		Tag:                def.TagName,
		Extends:            def.Extends,
		Interface:          entry.Base.Interface,
		Properties:         make([]PropertyInfo, len(def.Properties)),
		ObservedAttributes: def.ObservedAttributeNames(),
	}
	if info.ObservedAttributes == nil {
		info.ObservedAttributes = []string{}
	}
	for i, spec := range def.Properties {
		info.Properties[i] = PropertyInfo{
			Name:      spec.Name,
			Type:      spec.Type.String(),
			Attribute: spec.Attribute,
			Reflect:   spec.Reflect,
			State:     spec.State,
		}
	}
	return info
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Stats(),
	})
}

func (s *Server) handleElements(w http.ResponseWriter, r *http.Request) {
	entries := s.registry.Entries()
	resp := ElementsResponse{
		Elements: make([]ElementInfo, len(entries)),
		Builtins: s.registry.Builtins(),
	}
	for i, e := range entries {
		resp.Elements[i] = Describe(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRender creates, connects and renders a fresh element and
// responds with its HTML.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	props, err := s.queryProps(tag, r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	el, err := s.registry.Create(tag, s.elementOptions(props)...)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := el.ConnectedCallback(); err != nil {
		writeError(w, err)
		return
	}
	html := el.HTML(false)
	el.DisconnectedCallback()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// HandleWebSocket upgrades the connection and hosts a new element for
// it until the client disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	props, err := s.queryProps(tag, r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	session := newSession(conn, tag, s.codec, s.config, s.logger)
	opts := append(s.elementOptions(props),
		component.WithID(session.ID),
		component.WithContext(session.Context()),
		component.WithEventSink(session.emitEvent),
	)

	el, err := s.registry.Create(tag, opts...)
	if err == nil {
		err = el.ConnectedCallback()
	}
	if err == nil {
		err = session.attach(el)
	}
	if err != nil {
		s.logger.Error("session setup failed", "tag", tag, "error", err)
		session.sendError(err)
		session.Close()
		if el != nil {
			el.DisconnectedCallback()
		}
		return
	}

	s.sessions.Register(session)
	session.logger.Info("session opened")
	session.Start()
}

// queryProps converts query parameters into property values of tag.
// Values parse the way attribute values do.
func (s *Server) queryProps(tag string, query url.Values) (map[string]any, error) {
	def, ok := s.registry.Lookup(tag)
	if !ok {
		return nil, errors.New(errors.CodeUnknownElement).WithSubject(tag)
	}
	if len(query) == 0 {
		return nil, nil
	}

	props := make(map[string]any, len(query))
	for name, values := range query {
		spec, found := findSpec(def, name)
		if !found {
			return nil, errors.New(errors.CodeInvalidProperty).WithSubject(name)
		}
		raw := values[len(values)-1]
		v, err := spec.FromAttr(&raw)
		if err != nil {
			return nil, err
		}
		props[name] = v
	}
	return props, nil
}

func findSpec(def *component.Definition, name string) (property.Spec, bool) {
	for _, p := range def.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return property.Spec{}, false
}

// writeError responds with the error frame body and a status matching
// the error code.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.CodeOf(err) {
	case errors.CodeUnknownElement:
		status = http.StatusNotFound
	case errors.CodeInvalidProperty, errors.CodeAttributeCast:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, protocol.NewError(err).Error)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
