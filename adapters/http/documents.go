package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/artpar/mailcraft/app"
	"github.com/artpar/mailcraft/domain/export"
	"github.com/artpar/mailcraft/domain/forest"
	"github.com/artpar/mailcraft/domain/module"
	"github.com/artpar/mailcraft/pkg/jsonapi"
	"github.com/artpar/mailcraft/ports"
)

// Resource types.
const (
	TypeDocument = "documents"
	TypeModule   = "modules"
	TypeExport   = "exports"
	TypeKind     = "kinds"
)

// maxRecipeBytes bounds recipe uploads.
const maxRecipeBytes = 1 << 20

// DocumentHandler serves the document builder API.
type DocumentHandler struct {
	workspace *app.Workspace
	exports   *app.ExportService
	catalog   ports.Catalog
	logger    zerolog.Logger
}

// NewDocumentHandler creates the document API handler.
func NewDocumentHandler(ws *app.Workspace, exports *app.ExportService, catalog ports.Catalog, logger zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{workspace: ws, exports: exports, catalog: catalog, logger: logger}
}

// Routes returns the API router.
func (h *DocumentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/kinds", h.listKinds)

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", h.listDocuments)
		r.Post("/", h.createDocument)

		r.Route("/{docID}", func(r chi.Router) {
			r.Get("/", h.getDocument)
			r.Delete("/", h.deleteDocument)

			r.Put("/selection", h.selectModule)
			r.Delete("/selection", h.clearSelection)

			r.Post("/recipes", h.applyRecipe)
			r.Get("/preview", h.preview)

			r.Get("/exports", h.listExports)
			r.Post("/exports", h.createExport)

			r.Route("/modules", func(r chi.Router) {
				r.Get("/", h.listModules)
				r.Post("/", h.insertModule)
				r.Get("/{moduleID}", h.getModule)
				r.Patch("/{moduleID}", h.updateModule)
				r.Delete("/{moduleID}", h.removeModule)
				r.Post("/{moduleID}/move", h.moveModule)
				r.Post("/{moduleID}/duplicate", h.duplicateModule)
			})
		})
	})

	r.Get("/exports/{exportID}", h.getExport)
	r.Get("/exports/{exportID}/html", h.getExportHTML)

	return r
}

// -----------------------------------------------------------------------------
// Catalog
// -----------------------------------------------------------------------------

// listKinds returns the module palette.
//
//	@Summary		List module kinds
//	@Tags			Catalog
//	@Produce		json
//	@Success		200	{object}	jsonapi.Document
//	@Router			/api/v1/kinds [get]
func (h *DocumentHandler) listKinds(w http.ResponseWriter, r *http.Request) {
	kinds := h.catalog.All()
	resources := make([]jsonapi.Resource, 0, len(kinds))
	for _, k := range kinds {
		resources = append(resources, kindResource(k))
	}
	jsonapi.WriteCollection(w, resources)
}

// -----------------------------------------------------------------------------
// Documents
// -----------------------------------------------------------------------------

// listDocuments returns open documents, oldest first.
//
//	@Summary		List documents
//	@Tags			Documents
//	@Produce		json
//	@Success		200	{object}	jsonapi.Document
//	@Router			/api/v1/documents [get]
func (h *DocumentHandler) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs := h.workspace.List()
	resources := make([]jsonapi.Resource, 0, len(docs))
	for _, d := range docs {
		resources = append(resources, documentResource(d))
	}
	jsonapi.WriteCollection(w, resources)
}

// createDocument opens a new empty document.
//
//	@Summary		Create a document
//	@Tags			Documents
//	@Accept			json
//	@Produce		json
//	@Success		201	{object}	jsonapi.Document
//	@Failure		400	{object}	jsonapi.Document
//	@Router			/api/v1/documents [post]
func (h *DocumentHandler) createDocument(w http.ResponseWriter, r *http.Request) {
	req, err := jsonapi.DecodeRequest(r.Body, TypeDocument)
	if err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()))
		return
	}
	name, err := attrString(req.Data.Attributes, "name")
	if err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()))
		return
	}

	info, err := h.workspace.Create(name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonapi.WriteCreated(w, documentResource(info), documentPath(info.ID))
}

func (h *DocumentHandler) getDocument(w http.ResponseWriter, r *http.Request) {
	info, err := h.workspace.Get(chi.URLParam(r, "docID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonapi.WriteResource(w, http.StatusOK, documentResource(info))
}

func (h *DocumentHandler) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.workspace.Delete(chi.URLParam(r, "docID")); err != nil {
		h.writeError(w, err)
		return
	}
	jsonapi.WriteNoContent(w)
}

func (h *DocumentHandler) selectModule(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	req, err := jsonapi.DecodeRequest(r.Body, TypeModule)
	if err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()))
		return
	}

	err = h.workspace.With(docID, func(b *app.Builder) error {
		return b.Select(req.Data.ID)
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.getDocument(w, r)
}

func (h *DocumentHandler) clearSelection(w http.ResponseWriter, r *http.Request) {
	err := h.workspace.With(chi.URLParam(r, "docID"), func(b *app.Builder) error {
		b.ClearSelection()
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonapi.WriteNoContent(w)
}

// applyRecipe runs a YAML recipe against the document.
//
//	@Summary		Apply a recipe
//	@Description	Runs scripted builder operations. Steps before a failing step stay applied.
//	@Tags			Documents
//	@Accept			application/yaml
//	@Produce		json
//	@Param			docID	path		string	true	"Document ID"
//	@Success		200		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		422		{object}	jsonapi.Document
//	@Router			/api/v1/documents/{docID}/recipes [post]
func (h *DocumentHandler) applyRecipe(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	data, err := io.ReadAll(io.LimitReader(r.Body, maxRecipeBytes))
	if err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()))
		return
	}
	recipe, err := app.ParseRecipe(data)
	if err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()))
		return
	}

	var refs map[string]string
	var modules []jsonapi.Resource
	err = h.workspace.With(docID, func(b *app.Builder) error {
		var applyErr error
		refs, applyErr = recipe.Apply(b)
		modules = moduleResources(docID, b.Snapshot())
		return applyErr
	})
	if err != nil {
		var stepErr *app.StepError
		if errors.As(err, &stepErr) {
			e := domainError(err)
			e.Meta = jsonapi.Meta{"step": stepErr.Index, "op": stepErr.Op, "refs": refs}
			jsonapi.WriteError(w, e)
			return
		}
		h.writeError(w, err)
		return
	}

	doc := jsonapi.NewDocument().
		Data(modules).
		Meta("recipe", recipe.Name).
		Meta("steps", len(recipe.Steps)).
		Meta("refs", refs).
		Build()
	jsonapi.WriteDocument(w, http.StatusOK, doc)
}

// -----------------------------------------------------------------------------
// Modules
// -----------------------------------------------------------------------------

// listModules returns the document's modules in forest order. The parent and
// bucket query parameters narrow the list to one child sequence; parent=""
// with no bucket lists root modules.
//
//	@Summary		List modules
//	@Tags			Modules
//	@Produce		json
//	@Param			docID	path		string	true	"Document ID"
//	@Param			parent	query		string	false	"Parent module ID"
//	@Param			bucket	query		string	false	"Switch bucket (US, CA, AU, Default)"
//	@Success		200		{object}	jsonapi.Document
//	@Router			/api/v1/documents/{docID}/modules [get]
func (h *DocumentHandler) listModules(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	q := r.URL.Query()

	var bucket module.Bucket
	if q.Has("bucket") {
		b, err := module.ParseBucket(q.Get("bucket"))
		if err != nil {
			jsonapi.WriteError(w, jsonapi.NewError(400, "invalid_bucket", "Bad Request").
				Detail(err.Error()).Parameter("bucket").Build())
			return
		}
		bucket = b
	}

	var resources []jsonapi.Resource
	err := h.workspace.With(docID, func(b *app.Builder) error {
		snap := b.Snapshot()
		var mods []module.Placed
		switch {
		case q.Has("bucket"):
			mods = snap.ChildrenOfBucket(q.Get("parent"), bucket)
		case q.Has("parent") && q.Get("parent") != "":
			mods = snap.ChildrenOf(q.Get("parent"))
		case q.Has("parent"):
			mods = snap.RootModules()
		default:
			mods = snap.Modules()
		}
		for _, m := range mods {
			resources = append(resources, moduleResource(docID, m, snap))
		}
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonapi.WriteCollection(w, resources)
}

// insertModule places a new module. Without a parent the module is a root
// inserted at the optional position "at"; with a parent it is appended to
// the (parent, bucket) sequence.
//
//	@Summary		Insert a module
//	@Tags			Modules
//	@Accept			json
//	@Produce		json
//	@Param			docID	path		string	true	"Document ID"
//	@Success		201		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Failure		422		{object}	jsonapi.Document
//	@Router			/api/v1/documents/{docID}/modules [post]
func (h *DocumentHandler) insertModule(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	req, err := jsonapi.DecodeRequest(r.Body, TypeModule)
	if err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()))
		return
	}
	p, err := parsePlacement(req.Data.Attributes)
	if err != nil {
		h.writeRequestError(w, err)
		return
	}
	kind, err := attrString(req.Data.Attributes, "kind")
	if err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()))
		return
	}

	var res jsonapi.Resource
	err = h.workspace.With(docID, func(b *app.Builder) error {
		var id string
		var err error
		if p.parent == "" {
			id, err = b.InsertRoot(kind, p.at)
		} else {
			id, err = b.InsertNested(kind, p.parent, p.bucket)
		}
		if err != nil {
			return err
		}
		snap := b.Snapshot()
		m, _ := snap.Get(id)
		res = moduleResource(docID, m, snap)
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonapi.WriteCreated(w, res, res.Links.Self)
}

func (h *DocumentHandler) getModule(w http.ResponseWriter, r *http.Request) {
	docID, id := chi.URLParam(r, "docID"), chi.URLParam(r, "moduleID")
	res, err := h.moduleAfter(docID, id, func(*app.Builder) error { return nil })
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonapi.WriteResource(w, http.StatusOK, res)
}

// updateModule sets field values. Fields are applied in name order, each with
// alias derivation; an unknown field rejects the whole update.
//
//	@Summary		Update module values
//	@Tags			Modules
//	@Accept			json
//	@Produce		json
//	@Param			docID		path		string	true	"Document ID"
//	@Param			moduleID	path		string	true	"Module ID"
//	@Success		200			{object}	jsonapi.Document
//	@Failure		422			{object}	jsonapi.Document
//	@Router			/api/v1/documents/{docID}/modules/{moduleID} [patch]
func (h *DocumentHandler) updateModule(w http.ResponseWriter, r *http.Request) {
	docID, id := chi.URLParam(r, "docID"), chi.URLParam(r, "moduleID")
	req, err := jsonapi.DecodeRequest(r.Body, TypeModule)
	if err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()))
		return
	}
	values, err := attrValues(req.Data.Attributes)
	if err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()))
		return
	}

	res, err := h.moduleAfter(docID, id, func(b *app.Builder) error {
		return b.UpdateValues(id, values)
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonapi.WriteResource(w, http.StatusOK, res)
}

func (h *DocumentHandler) removeModule(w http.ResponseWriter, r *http.Request) {
	docID, id := chi.URLParam(r, "docID"), chi.URLParam(r, "moduleID")
	err := h.workspace.With(docID, func(b *app.Builder) error {
		return b.Remove(id)
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonapi.WriteNoContent(w)
}

// moveModule repositions a module. A root module (no parent attribute)
// reorders among the roots; otherwise it moves into (parent, bucket).
//
//	@Summary		Move a module
//	@Tags			Modules
//	@Accept			json
//	@Produce		json
//	@Param			docID		path		string	true	"Document ID"
//	@Param			moduleID	path		string	true	"Module ID"
//	@Success		200			{object}	jsonapi.Document
//	@Failure		409			{object}	jsonapi.Document
//	@Failure		422			{object}	jsonapi.Document
//	@Router			/api/v1/documents/{docID}/modules/{moduleID}/move [post]
func (h *DocumentHandler) moveModule(w http.ResponseWriter, r *http.Request) {
	docID, id := chi.URLParam(r, "docID"), chi.URLParam(r, "moduleID")
	req, err := jsonapi.DecodeRequest(r.Body, TypeModule)
	if err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()))
		return
	}
	p, err := parsePlacement(req.Data.Attributes)
	if err != nil {
		h.writeRequestError(w, err)
		return
	}
	if p.at == nil {
		jsonapi.WriteError(w, jsonapi.ErrValidation("missing_position", "at", "at is required"))
		return
	}

	res, err := h.moduleAfter(docID, id, func(b *app.Builder) error {
		if p.parent == "" {
			return b.MoveRoot(id, *p.at)
		}
		return b.MoveNested(id, p.parent, p.bucket, *p.at)
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonapi.WriteResource(w, http.StatusOK, res)
}

func (h *DocumentHandler) duplicateModule(w http.ResponseWriter, r *http.Request) {
	docID, id := chi.URLParam(r, "docID"), chi.URLParam(r, "moduleID")

	var res jsonapi.Resource
	err := h.workspace.With(docID, func(b *app.Builder) error {
		copyID, err := b.Duplicate(id)
		if err != nil {
			return err
		}
		snap := b.Snapshot()
		m, _ := snap.Get(copyID)
		res = moduleResource(docID, m, snap)
		res.Meta = jsonapi.Meta{"source": id, "subtree": len(snap.DescendantsOf(copyID)) + 1}
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonapi.WriteCreated(w, res, res.Links.Self)
}

// moduleAfter runs fn and returns the module's resource from the resulting forest.
func (h *DocumentHandler) moduleAfter(docID, id string, fn func(*app.Builder) error) (jsonapi.Resource, error) {
	var res jsonapi.Resource
	err := h.workspace.With(docID, func(b *app.Builder) error {
		if err := fn(b); err != nil {
			return err
		}
		snap := b.Snapshot()
		m, ok := snap.Get(id)
		if !ok {
			return fmt.Errorf("%w: %q", module.ErrReferenceNotFound, id)
		}
		res = moduleResource(docID, m, snap)
		return nil
	})
	return res, err
}

// -----------------------------------------------------------------------------
// Exports
// -----------------------------------------------------------------------------

// preview compiles the document without archiving and returns the markup.
//
//	@Summary		Preview export markup
//	@Tags			Exports
//	@Produce		html
//	@Param			docID	path		string	true	"Document ID"
//	@Success		200		{string}	string
//	@Router			/api/v1/documents/{docID}/preview [get]
func (h *DocumentHandler) preview(w http.ResponseWriter, r *http.Request) {
	var res export.Result
	err := h.workspace.With(chi.URLParam(r, "docID"), func(b *app.Builder) error {
		res = h.exports.Compile(b)
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Skipped-Modules", strconv.Itoa(len(res.Skipped)))
	w.Header().Set("X-Color-Fallbacks", strconv.Itoa(len(res.MalformedColors)))
	io.WriteString(w, res.HTML)
}

// createExport compiles and archives the document.
//
//	@Summary		Export a document
//	@Description	Compiles the document and archives the markup. An export identical to the latest one is returned with archived=false.
//	@Tags			Exports
//	@Produce		json
//	@Param			docID	path		string	true	"Document ID"
//	@Success		201		{object}	jsonapi.Document
//	@Success		200		{object}	jsonapi.Document
//	@Router			/api/v1/documents/{docID}/exports [post]
func (h *DocumentHandler) createExport(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	var out app.ExportResult
	err := h.workspace.With(docID, func(b *app.Builder) error {
		var err error
		out, err = h.exports.Export(r.Context(), docID, b)
		return err
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	res := exportResource(out.Record)
	res.Meta = jsonapi.Meta{"archived": out.Archived}
	if out.Archived {
		jsonapi.WriteCreated(w, res, res.Links.Self)
		return
	}
	jsonapi.WriteResource(w, http.StatusOK, res)
}

func (h *DocumentHandler) listExports(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if _, err := h.workspace.Get(docID); err != nil {
		h.writeError(w, err)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonapi.WriteError(w, jsonapi.NewError(400, "invalid_limit", "Bad Request").
				Detail("limit must be a non-negative integer").Parameter("limit").Build())
			return
		}
		limit = n
	}

	recs, err := h.exports.History(r.Context(), docID, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	resources := make([]jsonapi.Resource, 0, len(recs))
	for _, rec := range recs {
		res := exportResource(rec)
		delete(res.Attributes, "html")
		resources = append(resources, res)
	}
	jsonapi.WriteCollection(w, resources)
}

func (h *DocumentHandler) getExport(w http.ResponseWriter, r *http.Request) {
	rec, err := h.exports.Get(r.Context(), chi.URLParam(r, "exportID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonapi.WriteResource(w, http.StatusOK, exportResource(rec))
}

func (h *DocumentHandler) getExportHTML(w http.ResponseWriter, r *http.Request) {
	rec, err := h.exports.Get(r.Context(), chi.URLParam(r, "exportID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", `"`+rec.Fingerprint+`"`)
	io.WriteString(w, rec.HTML)
}

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

func (h *DocumentHandler) writeError(w http.ResponseWriter, err error) {
	e := domainError(err)
	if e.StatusCode() >= 500 {
		h.logger.Error().Err(err).Msg("request failed")
	}
	jsonapi.WriteError(w, e)
}

// writeRequestError reports a malformed request attribute. Errors from the
// builder taxonomy keep their own status.
func (h *DocumentHandler) writeRequestError(w http.ResponseWriter, err error) {
	if app.ErrorClass(err) != app.ResultError {
		h.writeError(w, err)
		return
	}
	jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()))
}

// domainError maps the builder error taxonomy onto HTTP statuses.
func domainError(err error) jsonapi.Error {
	class := app.ErrorClass(err)
	switch class {
	case "not_found", "document_not_found":
		return jsonapi.NewError(404, class, "Not Found").Detail(err.Error()).Build()
	case "cyclic_move":
		return jsonapi.ErrConflict(class, err.Error())
	case "invalid_placement", "unknown_kind", "unknown_field", "invalid_bucket":
		return jsonapi.ErrValidation(class, "", err.Error())
	}
	return jsonapi.ErrInternal("")
}

// -----------------------------------------------------------------------------
// Resources
// -----------------------------------------------------------------------------

func documentPath(id string) string {
	return "/api/v1/documents/" + id
}

func documentResource(d app.DocumentInfo) jsonapi.Resource {
	return jsonapi.NewResource(TypeDocument, d.ID).
		Attr("name", d.Name).
		Attr("created_at", d.CreatedAt).
		Attr("modules", d.Modules).
		BelongsTo("selected", TypeModule, d.Selected).
		Link(documentPath(d.ID)).
		Build()
}

func moduleResource(docID string, m module.Placed, f *forest.Forest) jsonapi.Resource {
	children := f.ChildrenOf(m.ID)
	ids := make([]string, len(children))
	for i, c := range children {
		ids[i] = c.ID
	}
	return jsonapi.NewResource(TypeModule, m.ID).
		Attr("kind", m.KindID).
		Attr("role", m.Role().String()).
		Attr("bucket", string(m.Bucket)).
		Attr("values", m.Values).
		BelongsTo("parent", TypeModule, m.ParentID).
		HasMany("children", TypeModule, ids).
		Link(documentPath(docID) + "/modules/" + m.ID).
		Build()
}

func moduleResources(docID string, f *forest.Forest) []jsonapi.Resource {
	mods := f.Modules()
	out := make([]jsonapi.Resource, len(mods))
	for i, m := range mods {
		out[i] = moduleResource(docID, m, f)
	}
	return out
}

func exportResource(rec export.Record) jsonapi.Resource {
	return jsonapi.NewResource(TypeExport, rec.ID).
		Attr("html", rec.HTML).
		Attr("fingerprint", rec.Fingerprint).
		Attr("bytes", rec.Bytes).
		Attr("roots", rec.Roots).
		Attr("modules", rec.Modules).
		Attr("else_policy", string(rec.ElsePolicy)).
		Attr("malformed_colors", nonNil(rec.MalformedColors)).
		Attr("skipped", nonNil(rec.Skipped)).
		Attr("created_at", rec.CreatedAt).
		BelongsTo("document", TypeDocument, rec.DocumentID).
		Link("/api/v1/exports/" + rec.ID).
		Build()
}

type fieldView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Input string `json:"input"`
}

func kindResource(k module.Kind) jsonapi.Resource {
	fields := make([]fieldView, len(k.Fields))
	for i, f := range k.Fields {
		fields[i] = fieldView{ID: f.ID, Label: f.Label, Input: string(f.Input)}
	}
	aliases := k.Aliases
	if aliases == nil {
		aliases = map[string][]string{}
	}
	return jsonapi.NewResource(TypeKind, k.ID).
		Attr("label", k.Label).
		Attr("role", k.Role().String()).
		Attr("fields", fields).
		Attr("aliases", aliases).
		Build()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// -----------------------------------------------------------------------------
// Request attributes
// -----------------------------------------------------------------------------

type placement struct {
	parent string
	bucket module.Bucket
	at     *int
}

func parsePlacement(attrs map[string]any) (placement, error) {
	var p placement
	var err error
	if p.parent, err = attrString(attrs, "parent"); err != nil {
		return p, err
	}
	bucket, err := attrString(attrs, "bucket")
	if err != nil {
		return p, err
	}
	if p.bucket, err = module.ParseBucket(bucket); err != nil {
		return p, err
	}
	if p.at, err = attrInt(attrs, "at"); err != nil {
		return p, err
	}
	return p, nil
}

func attrString(attrs map[string]any, key string) (string, error) {
	v, ok := attrs[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("attribute %s must be a string", key)
	}
	return s, nil
}

func attrInt(attrs map[string]any, key string) (*int, error) {
	v, ok := attrs[key]
	if !ok || v == nil {
		return nil, nil
	}
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) {
		return nil, fmt.Errorf("attribute %s must be an integer", key)
	}
	n := int(f)
	return &n, nil
}

func attrValues(attrs map[string]any) (map[string]string, error) {
	raw, ok := attrs["values"].(map[string]any)
	if !ok {
		return nil, errors.New("attribute values must be an object")
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("value of %s must be a string", k)
		}
		values[k] = s
	}
	return values, nil
}
