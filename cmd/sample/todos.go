package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/bjaus/apidoc"
)

// Todo and Project share plain string fields, while Project's name and slug
// carry a minLength constraint, so the document keeps one component per
// distinct string shape.
type Todo struct {
	ID        string    `json:"id" required:"true"`
	Title     string    `json:"title" required:"true"`
	Done      bool      `json:"done"`
	Project   string    `json:"project,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Project struct {
	ID    string `json:"id" required:"true"`
	Name  string `json:"name" minLength:"1" required:"true"`
	Slug  string `json:"slug" minLength:"1"`
	Owner string `json:"owner"`
}

type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// Shape is documented as a discriminated union of Circle and Rect.
type Shape interface {
	Area() float64
}

type Circle struct {
	Radius float64 `json:"radius" minimum:"0"`
}

func (c Circle) Area() float64 { return math.Pi * c.Radius * c.Radius }

type Rect struct {
	Width  float64 `json:"width" minimum:"0"`
	Height float64 `json:"height" minimum:"0"`
}

func (r Rect) Area() float64 { return r.Width * r.Height }

type Board struct {
	Shapes []Shape  `json:"shapes"`
	Pinned Shape    `json:"pinned,omitempty"`
	Area   float64  `json:"area"`
	Labels []string `json:"labels,omitempty"`
}

type ListTodosReq struct {
	Project string `query:"project" doc:"Only todos of this project"`
	Done    *bool  `query:"done"`
}

type TodoByIDReq struct {
	ID string `path:"id" doc:"Todo ID"`
}

type CreateTodoReq struct {
	Body struct {
		Title   string `json:"title" required:"true" minLength:"1" maxLength:"200"`
		Project string `json:"project,omitempty"`
	}
}

type UpdateTodoReq struct {
	ID   string `path:"id" doc:"Todo ID"`
	Body struct {
		Title *string `json:"title,omitempty" minLength:"1" maxLength:"200"`
		Done  *bool   `json:"done,omitempty"`
	}
}

type CreateProjectReq struct {
	Body struct {
		Name string `json:"name" minLength:"1" required:"true"`
		Slug string `json:"slug" minLength:"1"`
	}
}

type AttachReq struct {
	ID    string              `path:"id" doc:"Todo ID"`
	Note  string              `form:"note" maxLength:"500"`
	Files []apidoc.FileUpload `form:"files" required:"true"`
}

type Attachment struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type AttachResp struct {
	Attachments []Attachment `json:"attachments"`
}

// store is an in-memory todo and project store.
type store struct {
	mu       sync.RWMutex
	todos    map[string]Todo
	projects map[string]Project
	nextID   int
}

func newStore() *store {
	return &store{
		todos:    make(map[string]Todo),
		projects: make(map[string]Project),
		nextID:   1,
	}
}

func (s *store) id() string {
	id := strconv.Itoa(s.nextID)
	s.nextID++
	return id
}

func (s *store) listTodos(project string, done *bool) []Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Todo, 0, len(s.todos))
	for _, t := range s.todos {
		if project != "" && t.Project != project {
			continue
		}
		if done != nil && t.Done != *done {
			continue
		}
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b Todo) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}

// newRouter wires the todo API onto an apidoc router.
func newRouter(cfg config, logger *slog.Logger) *apidoc.Router {
	s := newStore()

	r := apidoc.New(
		apidoc.WithTitle(cfg.Title),
		apidoc.WithVersion(cfg.Version),
		apidoc.WithLogger(logger),
		apidoc.WithSpecRefreshLimit(cfg.SpecRefresh),
		apidoc.WithEncoder(csvEncoder{}),
		apidoc.Polymorphic[Shape]("kind",
			apidoc.Derived[Circle]("circle"),
			apidoc.Derived[Rect]("rect"),
		),
	)
	r.Use(apidoc.Recovery(logger), apidoc.Logger(logger))

	r.ServeSpec("/openapi.json")
	r.ServeSpecYAML("/openapi.yaml")
	r.ServeDocs("/docs")

	v1 := r.Group("/v1")
	todos := v1.Group("/todos", apidoc.WithGroupTags("todos"))
	projects := v1.Group("/projects", apidoc.WithGroupTags("projects"))

	apidoc.Get(todos, "", func(_ context.Context, req *ListTodosReq) (*Page[Todo], error) {
		items := s.listTodos(req.Project, req.Done)
		return &Page[Todo]{Items: items, Total: len(items)}, nil
	}, apidoc.WithSummary("List todos"))

	apidoc.Post(todos, "", func(_ context.Context, req *CreateTodoReq) (*Todo, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		t := Todo{ID: s.id(), Title: req.Body.Title, Project: req.Body.Project, CreatedAt: time.Now()}
		s.todos[t.ID] = t
		return &t, nil
	}, apidoc.WithStatus(http.StatusCreated), apidoc.WithSummary("Create todo"))

	apidoc.Get(todos, "/{id}", func(_ context.Context, req *TodoByIDReq) (*Todo, error) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		t, ok := s.todos[req.ID]
		if !ok {
			return nil, apidoc.Errorf(http.StatusNotFound, "todo %s not found", req.ID)
		}
		return &t, nil
	}, apidoc.WithSummary("Get todo"), apidoc.WithErrors(http.StatusNotFound))

	apidoc.Patch(todos, "/{id}", func(_ context.Context, req *UpdateTodoReq) (*Todo, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		t, ok := s.todos[req.ID]
		if !ok {
			return nil, apidoc.Errorf(http.StatusNotFound, "todo %s not found", req.ID)
		}
		if req.Body.Title != nil {
			t.Title = *req.Body.Title
		}
		if req.Body.Done != nil {
			t.Done = *req.Body.Done
		}
		s.todos[t.ID] = t
		return &t, nil
	}, apidoc.WithSummary("Update todo"), apidoc.WithErrors(http.StatusNotFound))

	apidoc.Delete(todos, "/{id}", func(_ context.Context, req *TodoByIDReq) (*apidoc.Void, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.todos[req.ID]; !ok {
			return nil, apidoc.Errorf(http.StatusNotFound, "todo %s not found", req.ID)
		}
		delete(s.todos, req.ID)
		return &apidoc.Void{}, nil
	}, apidoc.WithSummary("Delete todo"), apidoc.WithErrors(http.StatusNotFound))

	apidoc.Post(todos, "/{id}/attachments", func(_ context.Context, req *AttachReq) (*AttachResp, error) {
		resp := &AttachResp{}
		for _, f := range req.Files {
			resp.Attachments = append(resp.Attachments, Attachment{Name: f.Filename, Size: f.Size})
		}
		return resp, nil
	}, apidoc.WithSummary("Attach files"))

	apidoc.Get(todos, "/export", func(_ context.Context, _ *apidoc.Void) (*apidoc.Stream, error) {
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		for _, t := range s.listTodos("", nil) {
			//nolint:errcheck // buffered writer, checked by Flush
			w.Write([]string{t.ID, t.Title, strconv.FormatBool(t.Done)})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return &apidoc.Stream{ContentType: "text/csv", Body: &buf}, nil
	}, apidoc.WithSummary("Export todos as CSV"))

	apidoc.Get(projects, "", func(_ context.Context, _ *apidoc.Void) (*Page[Project], error) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		page := &Page[Project]{}
		for _, p := range s.projects {
			page.Items = append(page.Items, p)
		}
		page.Total = len(page.Items)
		return page, nil
	}, apidoc.WithSummary("List projects"))

	apidoc.Post(projects, "", func(_ context.Context, req *CreateProjectReq) (*Project, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		p := Project{ID: s.id(), Name: req.Body.Name, Slug: req.Body.Slug}
		s.projects[p.ID] = p
		return &p, nil
	}, apidoc.WithStatus(http.StatusCreated), apidoc.WithSummary("Create project"), apidoc.WithErrors(http.StatusConflict))

	apidoc.Get(v1, "/board", func(_ context.Context, _ *apidoc.Void) (*Board, error) {
		b := &Board{
			Shapes: []Shape{Circle{Radius: 1}, Rect{Width: 2, Height: 3}},
			Pinned: Rect{Width: 1, Height: 1},
			Labels: []string{"demo"},
		}
		for _, sh := range b.Shapes {
			b.Area += sh.Area()
		}
		return b, nil
	}, apidoc.WithSummary("Sample board of shapes"), apidoc.WithTags("shapes"))

	return r
}

// csvEncoder renders todo pages as CSV for Accept: text/csv.
type csvEncoder struct{}

func (csvEncoder) ContentType() string { return "text/csv" }

func (csvEncoder) Encode(w io.Writer, v any) error {
	cw := csv.NewWriter(w)
	switch v := v.(type) {
	case *Page[Todo]:
		for _, t := range v.Items {
			if err := cw.Write([]string{t.ID, t.Title, strconv.FormatBool(t.Done)}); err != nil {
				return err
			}
		}
	case *Todo:
		if err := cw.Write([]string{v.ID, v.Title, strconv.FormatBool(v.Done)}); err != nil {
			return err
		}
	default:
		return fmt.Errorf("csv: cannot encode %T", v)
	}
	cw.Flush()
	return cw.Error()
}
