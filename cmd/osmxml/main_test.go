package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStats(t *testing.T) {
	summaries, err := statsCmd(context.Background(), []string{
		"-quiet",
		"../../parser/testdata/way.osm",
		"../../parser/testdata/relations.osm",
		"../../parser/testdata/invalid_nodes.osm",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 3 {
		t.Fatal(summaries)
	}
	if s := summaries[0]; s.Nodes != 7 || s.Ways != 2 || s.Relations != 0 {
		t.Error(s)
	}
	if s := summaries[1]; s.Relations != 6 {
		t.Error(s)
	}
	if s := summaries[2]; s.Nodes != 3 || s.Skipped()["malformed node"] != 4 {
		t.Error(s)
	}
}

func TestStatsMissingFile(t *testing.T) {
	_, err := statsCmd(context.Background(), []string{"-quiet", "../../parser/testdata/way.osm", "missing.osm"})
	if err == nil || !strings.Contains(err.Error(), "missing.osm") {
		t.Error("expected error for missing file, got", err)
	}
}

func TestExport(t *testing.T) {
	out := &bytes.Buffer{}
	if err := run(context.Background(), []string{"export", "-quiet", "../../parser/testdata/way.osm"}, out); err != nil {
		t.Fatal(err)
	}
	lines := 0
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		rec := map[string]interface{}{}
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatal(err)
		}
		lines++
	}
	// 7 nodes, 2 ways
	if lines != 9 {
		t.Errorf("expected 9 records, got %d", lines)
	}
}

func TestExportToFile(t *testing.T) {
	tmp, err := ioutil.TempDir("", "osmrouter_export_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmp)
	output := filepath.Join(tmp, "out.jsonl")

	if err := run(context.Background(), []string{"export", "-quiet", "-o", output, "../../parser/testdata/bounds.osm"}, ioutil.Discard); err != nil {
		t.Fatal(err)
	}
	data, err := ioutil.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), `{"type":"bounds"`) {
		t.Error(string(data))
	}
}

func TestVersionAndInvalidCommand(t *testing.T) {
	out := &bytes.Buffer{}
	if err := run(context.Background(), []string{"version"}, out); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "0.1.0") {
		t.Error(out.String())
	}
	if err := run(context.Background(), []string{"unknown"}, out); err == nil {
		t.Error("no error for unknown command")
	}
}

func TestRoute(t *testing.T) {
	out := &bytes.Buffer{}
	err := run(context.Background(), []string{"route", "-quiet", "-mode", "car",
		"-from", "0.0001,-0.0001", "-to", "-0.0001, 0.0021", "../../route/testdata/grid.osm"}, out)
	if err != nil {
		t.Fatal(err)
	}
	res := struct {
		Status string
		Nodes  []int
	}{}
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Status != "success" || len(res.Nodes) != 3 || res.Nodes[0] != 1 || res.Nodes[2] != 3 {
		t.Error(out.String())
	}

	for _, args := range [][]string{
		{"route", "-quiet", "-from", "0,0", "-to", "1,1"},
		{"route", "-quiet", "-from", "0", "-to", "1,1", "../../route/testdata/grid.osm"},
		{"route", "-quiet", "-from", "0,0", "-to", "91,0", "../../route/testdata/grid.osm"},
		{"route", "-quiet", "-mode", "boat", "-from", "0,0", "-to", "1,1", "../../route/testdata/grid.osm"},
	} {
		if err := run(context.Background(), args, ioutil.Discard); err == nil {
			t.Errorf("no error for %v", args)
		}
	}
}
