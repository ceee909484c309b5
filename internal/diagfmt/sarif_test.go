package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"oxide/internal/diag"
	"oxide/internal/source"
)

func TestSarifLog(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/work")
	fileID := fs.AddVirtual("/work/src/lib.rs", []byte("fn f() {\n    g(1 2)\n}\n"))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SynUnexpectedToken, source.Span{File: fileID, Start: 17, End: 18}, "expected `,` or `)`").
		WithNote(source.Span{File: fileID, Start: 14, End: 15}, "to close this `(`"))
	bag.Add(diag.New(diag.SevWarning, diag.SynTurbofishRequired, source.Span{File: fileID, Start: 13, End: 14}, "w"))
	bag.Add(diag.NewError(diag.SynUnexpectedToken, source.Span{File: fileID, Start: 19, End: 20}, "again"))

	var buf bytes.Buffer
	if err := Sarif(&buf, bag, fs, SarifRunMeta{ToolName: "oxide", ToolVersion: "0.1.0", InvocationArgs: []string{"diag", "src"}}); err != nil {
		t.Fatal(err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v\n%s", err, buf.String())
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("log = %+v", log)
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "oxide" || len(run.Tool.Driver.Rules) != 2 {
		t.Fatalf("driver = %+v", run.Tool.Driver)
	}
	if run.Tool.Driver.Rules[0].ID != "SYN2001" || run.Tool.Driver.Rules[1].ID != "SYN2011" {
		t.Fatalf("rules = %+v", run.Tool.Driver.Rules)
	}
	if len(run.Results) != 3 {
		t.Fatalf("results = %d", len(run.Results))
	}
	first := run.Results[0]
	if first.Level != "error" || first.RuleID != "SYN2001" {
		t.Fatalf("first result = %+v", first)
	}
	region := first.Locations[0].PhysicalLocation.Region
	if region.StartLine != 2 || region.StartColumn != 9 || region.ByteOffset != 17 || region.ByteLength != 1 {
		t.Fatalf("region = %+v", region)
	}
	if uri := first.Locations[0].PhysicalLocation.ArtifactLocation.URI; uri != "src/lib.rs" {
		t.Fatalf("uri = %q", uri)
	}
	if len(first.RelatedLocations) != 1 || first.RelatedLocations[0].Message.Text != "to close this `(`" {
		t.Fatalf("related = %+v", first.RelatedLocations)
	}
	if run.Results[1].Level != "warning" {
		t.Fatalf("second level = %q", run.Results[1].Level)
	}
	if len(run.Invocations) != 1 || !run.Invocations[0].ExecutionSuccessful {
		t.Fatalf("invocations = %+v", run.Invocations)
	}
}
