package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"gigtrack-cli/internal/export"
	"gigtrack-cli/internal/model"
	"gigtrack-cli/internal/report"
	"gigtrack-cli/internal/store"
	"gigtrack-cli/internal/tracker"
	"gigtrack-cli/internal/view"

	"github.com/CAFxX/httpcompression"
	"github.com/starfederation/datastar-go/datastar"
)

//go:embed templates/*.html static/*.css
var assetsFS embed.FS

// DefaultDatastarURL is the client bundle used for live search. The page works
// without it.
const DefaultDatastarURL = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"

type ServerConfig struct {
	Controller *tracker.Controller
	Logger     *slog.Logger
	// DatastarURL overrides DefaultDatastarURL; "-" disables live search.
	DatastarURL string
}

type Server struct {
	ctrl     *tracker.Controller
	log      *slog.Logger
	tmpl     *template.Template
	datastar string
	compress func(http.Handler) http.Handler
}

type pageVM struct {
	Title       string
	Notice      string
	Query       string
	Currency    string
	DatastarURL string

	Table   view.Table
	Form    tracker.Form
	Editing bool
	EditPos int
}

type confirmVM struct {
	Title       string
	Row         view.Row
	Query       string
	DatastarURL string
}

type summaryVM struct {
	Title       string
	Body        template.HTML
	Summary     report.Summary
	DatastarURL string
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Controller == nil {
		return nil, errors.New("web: missing controller")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	ds := strings.TrimSpace(cfg.DatastarURL)
	switch ds {
	case "":
		ds = DefaultDatastarURL
	case "-":
		ds = ""
	}

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"trim":  strings.TrimSpace,
		"yesno": view.YesNo,
		"signals": func(q string) (string, error) {
			b, err := json.Marshal(map[string]string{"q": q})
			return string(b), err
		},
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	compress, err := httpcompression.DefaultAdapter()
	if err != nil {
		return nil, err
	}
	return &Server{
		ctrl:     cfg.Controller,
		log:      cfg.Logger,
		tmpl:     tmpl,
		datastar: ds,
		compress: compress,
	}, nil
}

func (s *Server) Handler() http.Handler {
	page := func(h http.HandlerFunc) http.Handler { return s.compress(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /static/app.css", page(s.handleAppCSS))
	mux.Handle("GET /{$}", page(s.handleHome))
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("POST /projects", s.handleSubmit)
	mux.HandleFunc("POST /projects/{pos}/edit", s.handleEdit)
	mux.HandleFunc("POST /edit/cancel", s.handleEditCancel)
	mux.Handle("GET /projects/{pos}/delete", page(s.handleDeleteConfirm))
	mux.HandleFunc("POST /projects/{pos}/delete", s.handleDelete)
	mux.HandleFunc("POST /projects/{pos}/{flag}", s.handleFlag)
	mux.HandleFunc("GET /export", s.handleExport)
	mux.Handle("GET /summary", page(s.handleSummary))
	return s.logRequests(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = fmt.Fprintf(w, `{"ok":true,"projects":%d}`+"\n", len(s.ctrl.Projects()))
}

func (s *Server) handleAppCSS(w http.ResponseWriter, r *http.Request) {
	b, err := assetsFS.ReadFile("static/app.css")
	if err != nil || len(b) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(b)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.renderHome(w, http.StatusOK, q.Get("q"), q.Get("notice"), nil)
}

// renderHome renders the main page. form overrides the pre-filled form (used
// to keep the user's input after a rejected submit).
func (s *Server) renderHome(w http.ResponseWriter, status int, query, notice string, form *tracker.Form) {
	vm := pageVM{
		Title:       "Projects",
		Notice:      strings.TrimSpace(notice),
		Query:       strings.TrimSpace(query),
		Currency:    s.ctrl.Options().Currency,
		DatastarURL: s.datastar,
		Table:       s.ctrl.View(query),
	}
	if pos, ok := s.ctrl.Editing(); ok {
		vm.Editing = true
		vm.EditPos = pos
		vm.Form = s.ctrl.EditForm()
	}
	if form != nil {
		vm.Form = *form
	}
	s.render(w, status, "index.html", vm)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var sig struct {
		Q string `json:"q"`
	}
	if err := datastar.ReadSignals(r, &sig); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "projects", s.ctrl.View(sig.Q)); err != nil {
		s.log.Error("render search", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sse := datastar.NewSSE(w, r)
	_ = sse.PatchElements(buf.String(), datastar.WithSelector("#projects"), datastar.WithMode(datastar.ElementPatchModeOuter))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f := formFromRequest(r)
	p, _, err := s.ctrl.Submit(r.Context(), f)
	if errors.Is(err, tracker.ErrNameRequired) {
		s.renderHome(w, http.StatusUnprocessableEntity, r.PostForm.Get("q"), "Please enter a project name.", &f)
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	redirectHome(w, r, r.PostForm.Get("q"), "Saved "+p.Name+".")
}

func formFromRequest(r *http.Request) tracker.Form {
	return tracker.Form{
		Name:            r.PostForm.Get("name"),
		StartDate:       r.PostForm.Get("startDate"),
		Deadline:        r.PostForm.Get("deadline"),
		MyPayment:       r.PostForm.Get("myPayment"),
		AssignedTo:      r.PostForm.Get("assignedTo"),
		AssignedPayment: r.PostForm.Get("assignedPayment"),
	}
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	pos, ok := s.position(w, r)
	if !ok {
		return
	}
	if _, err := s.ctrl.BeginEdit(pos); err != nil {
		s.fail(w, err)
		return
	}
	http.Redirect(w, r, homeURL(r.PostForm.Get("q"), "")+"#project-form", http.StatusSeeOther)
}

func (s *Server) handleEditCancel(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	s.ctrl.CancelEdit()
	redirectHome(w, r, r.PostForm.Get("q"), "")
}

func (s *Server) handleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	pos, ok := s.position(w, r)
	if !ok {
		return
	}
	row, err := s.ctrl.Row(pos)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.render(w, http.StatusOK, "confirm.html", confirmVM{
		Title:       "Delete project",
		Row:         row,
		Query:       r.URL.Query().Get("q"),
		DatastarURL: s.datastar,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	pos, ok := s.position(w, r)
	if !ok {
		return
	}
	q := r.PostForm.Get("q")
	if r.PostForm.Get("confirm") != "yes" {
		// Deleting always goes through the confirmation page.
		http.Redirect(w, r, "/projects/"+strconv.Itoa(pos)+"/delete?q="+url.QueryEscape(q), http.StatusSeeOther)
		return
	}
	removed, err := s.ctrl.Delete(r.Context(), pos, true)
	if err != nil {
		s.fail(w, err)
		return
	}
	redirectHome(w, r, q, "Deleted "+removed.Name+".")
}

func (s *Server) handleFlag(w http.ResponseWriter, r *http.Request) {
	flag, err := model.ParseFlag(r.PathValue("flag"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	pos, ok := s.position(w, r)
	if !ok {
		return
	}
	switch strings.ToLower(strings.TrimSpace(r.PostForm.Get("value"))) {
	case "on", "true", "1":
		_, err = s.ctrl.SetFlag(r.Context(), pos, flag, true)
	case "off", "false", "0":
		_, err = s.ctrl.SetFlag(r.Context(), pos, flag, false)
	case "":
		_, err = s.ctrl.Toggle(r.Context(), pos, flag)
	default:
		http.Error(w, "value must be on or off", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	redirectHome(w, r, r.PostForm.Get("q"), "")
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.ctrl.Export()
	if errors.Is(err, export.ErrEmpty) {
		redirectHome(w, r, "", "There are no projects to export yet.")
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	opts := s.ctrl.Options()
	sum := report.Summarize(s.ctrl.Projects(), opts)
	s.render(w, http.StatusOK, "summary.html", summaryVM{
		Title:       "Summary",
		Body:        renderMarkdownHTML(report.Markdown(sum, opts)),
		Summary:     sum,
		DatastarURL: s.datastar,
	})
}

// position parses the {pos} path value and the form. An optional "id" form
// value guards against acting on a project that moved since the page was rendered.
func (s *Server) position(w http.ResponseWriter, r *http.Request) (int, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return 0, false
	}
	pos, err := strconv.Atoi(r.PathValue("pos"))
	if err != nil || pos < 0 {
		http.Error(w, "invalid position", http.StatusBadRequest)
		return 0, false
	}
	if raw := strings.TrimSpace(r.Form.Get("id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return 0, false
		}
		if s.ctrl.IndexOf(id) != pos {
			http.Error(w, "project changed since the page was loaded; reload and try again", http.StatusConflict)
			return 0, false
		}
	}
	return pos, true
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Error("render template", "template", name, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrPosition) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.log.Error("request failed", "err", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func homeURL(query, notice string) string {
	v := url.Values{}
	if q := strings.TrimSpace(query); q != "" {
		v.Set("q", q)
	}
	if n := strings.TrimSpace(notice); n != "" {
		v.Set("notice", n)
	}
	if len(v) == 0 {
		return "/"
	}
	return "/?" + v.Encode()
}

func redirectHome(w http.ResponseWriter, r *http.Request, query, notice string) {
	http.Redirect(w, r, homeURL(query, notice), http.StatusSeeOther)
}
