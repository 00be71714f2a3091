package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/mailcraft/adapters/catalog"
	"github.com/artpar/mailcraft/adapters/clock"
	"github.com/artpar/mailcraft/adapters/idgen"
	"github.com/artpar/mailcraft/adapters/memory"
	"github.com/artpar/mailcraft/app"
	"github.com/artpar/mailcraft/domain/export"
	"github.com/artpar/mailcraft/domain/module"
	"github.com/artpar/mailcraft/ports"
)

func newExportService(t *testing.T, store *memory.ExportStore) *app.ExportService {
	t.Helper()
	var archive ports.ExportArchive
	if store != nil {
		archive = store
	}
	clk := clock.NewFake(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)).WithStep(time.Second)
	return app.NewExportService(export.Options{}, newCatalog(t), archive, clk, idgen.NewSequential("exp_"), zerolog.Nop())
}

// countrySample builds a table holding a switch with two US buttons and one CA button.
func countrySample(t *testing.T) *app.Builder {
	t.Helper()
	b := newBuilder(t)
	root := mustID(t)(b.InsertRoot(catalog.KindTableWrapper, nil))
	sw := mustID(t)(b.InsertNested(catalog.KindCountrySwitcher, root, module.BucketNone))
	for _, s := range []struct {
		bucket module.Bucket
		title  string
	}{
		{module.BucketUS, "US One"},
		{module.BucketUS, "US Two"},
		{module.BucketCA, "CA One"},
	} {
		id := mustID(t)(b.InsertNested(catalog.KindCTAButton, sw, s.bucket))
		if err := b.UpdateValue(id, "title", s.title); err != nil {
			t.Fatalf("UpdateValue failed: %v", err)
		}
	}
	return b
}

func TestExportService_CountrySwitch(t *testing.T) {
	svc := newExportService(t, nil)
	res, err := svc.Export(context.Background(), "", countrySample(t))
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	html := res.Record.HTML

	ifAt := strings.Index(html, `%%[ IF @Country == "US" THEN ]%%`)
	elseifAt := strings.Index(html, `%%[ ELSEIF @Country == "CA" THEN ]%%`)
	endAt := strings.Index(html, "%%[ ENDIF ]%%")
	if ifAt < 0 || elseifAt < ifAt || endAt < elseifAt {
		t.Fatalf("unexpected switch structure:\n%s", html)
	}
	if n := strings.Count(html, "ENDIF"); n != 1 {
		t.Errorf("ENDIF count = %d, want 1", n)
	}
	if strings.Contains(html, "%%[ ELSE ]%%") {
		t.Error("unexpected ELSE branch")
	}

	us := html[ifAt:elseifAt]
	if !strings.Contains(us, "us_one_alias") || !strings.Contains(us, "us_two_alias") {
		t.Errorf("US branch missing buttons:\n%s", us)
	}
	if strings.Index(us, "US One") > strings.Index(us, "US Two") {
		t.Error("US buttons out of order")
	}
	if ca := html[elseifAt:endAt]; !strings.Contains(ca, "CA One") {
		t.Errorf("CA branch missing button:\n%s", ca)
	}
	if res.Archived {
		t.Error("Archived without an archive")
	}
	if res.Record.Fingerprint != app.Fingerprint(html) {
		t.Error("fingerprint does not match markup")
	}
}

func TestExportService_ArchivesAndDeduplicates(t *testing.T) {
	archive := memory.NewExportStore()
	svc := newExportService(t, archive)
	ctx := context.Background()
	b := countrySample(t)

	first, err := svc.Export(ctx, "doc-1", b)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !first.Archived {
		t.Error("first export not archived")
	}

	again, err := svc.Export(ctx, "doc-1", b)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if again.Archived {
		t.Error("identical export archived twice")
	}
	if again.Record.ID != first.Record.ID {
		t.Errorf("unchanged export id = %s, want %s", again.Record.ID, first.Record.ID)
	}

	root := b.Modules()[0].ID
	if err := b.UpdateValue(root, "bg", "#112233"); err != nil {
		t.Fatalf("UpdateValue failed: %v", err)
	}
	changed, err := svc.Export(ctx, "doc-1", b)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !changed.Archived {
		t.Error("changed export not archived")
	}

	if n, _ := archive.Count(ctx, "doc-1"); n != 2 {
		t.Errorf("archived count = %d, want 2", n)
	}
	history, err := svc.History(ctx, "doc-1", 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 || history[0].ID != changed.Record.ID {
		t.Errorf("history = %v, want newest first", history)
	}
}

func TestExportService_UpdateOptions(t *testing.T) {
	svc := newExportService(t, nil)
	b := newBuilder(t)
	root := mustID(t)(b.InsertRoot(catalog.KindTableWrapper, nil))
	sw := mustID(t)(b.InsertNested(catalog.KindCountrySwitcher, root, module.BucketNone))
	mustID(t)(b.InsertNested(catalog.KindAMPscriptBlock, sw, module.BucketUS))

	if strings.Contains(svc.Compile(b).HTML, "%%[ ELSE ]%%") {
		t.Error("ELSE emitted under omit policy")
	}

	svc.UpdateOptions(export.Options{ElsePolicy: export.ElsePrimary})
	if got := svc.Options().ElsePolicy; got != export.ElsePrimary {
		t.Errorf("ElsePolicy = %s, want primary", got)
	}
	if !strings.Contains(svc.Compile(b).HTML, "%%[ ELSE ]%%") {
		t.Error("ELSE missing under primary policy")
	}
}

func TestExportService_MalformedColor(t *testing.T) {
	rec := newRecordingMetrics()
	svc := newExportService(t, nil).WithMetrics(rec)
	b := newBuilder(t)
	root := mustID(t)(b.InsertRoot(catalog.KindTableWrapper, nil))
	if err := b.UpdateValue(root, "bg", "blue"); err != nil {
		t.Fatalf("UpdateValue failed: %v", err)
	}

	res, err := svc.Export(context.Background(), "", b)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(res.Record.HTML, "background:#FFFFFF;") {
		t.Errorf("HTML = %s, want fallback background", res.Record.HTML)
	}
	if len(res.Record.MalformedColors) != 1 || res.Record.MalformedColors[0] != root {
		t.Errorf("MalformedColors = %v, want [%s]", res.Record.MalformedColors, root)
	}
	if rec.exports[app.ResultOK] != 1 {
		t.Errorf("exports ok = %d, want 1", rec.exports[app.ResultOK])
	}
}

func TestFingerprint(t *testing.T) {
	a := app.Fingerprint("<table></table>")
	if len(a) != 64 {
		t.Errorf("len = %d, want 64 hex chars", len(a))
	}
	if a != app.Fingerprint("<table></table>") {
		t.Error("fingerprint not stable")
	}
	if a == app.Fingerprint("<table> </table>") {
		t.Error("different markup, same fingerprint")
	}
}

func TestExportService_Get(t *testing.T) {
	ctx := context.Background()

	svc := newExportService(t, memory.NewExportStore())
	res, err := svc.Export(ctx, "doc-1", countrySample(t))
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	got, err := svc.Get(ctx, res.Record.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.HTML != res.Record.HTML {
		t.Error("archived HTML differs from exported HTML")
	}

	_, err = svc.Get(ctx, "exp_missing")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
	if app.ErrorClass(err) != "not_found" {
		t.Errorf("ErrorClass = %s, want not_found", app.ErrorClass(err))
	}

	bare := newExportService(t, nil)
	if _, err := bare.Get(ctx, res.Record.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("Get without archive error = %v, want ErrNotFound", err)
	}
}
