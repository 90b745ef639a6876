package models

import "testing"

func TestFillDefaults_EmptyStruct(t *testing.T) {
	var p GenParams
	p.FillDefaults()

	want := DefaultGenParams()
	if p != want {
		t.Errorf("FillDefaults on zero value = %+v; want %+v", p, want)
	}
}

func TestFillDefaults_PreservesExplicitValues(t *testing.T) {
	p := GenParams{
		Prompt:     "a red fox",
		Steps:      35,
		CFG:        4.5,
		Sampler:    "dpmpp_2m",
		Resolution: "1024x1024",
		Seed:       12345,
		BatchSize:  4,
	}
	p.FillDefaults()

	if p.Steps != 35 || p.CFG != 4.5 || p.Sampler != "dpmpp_2m" {
		t.Errorf("explicit sampler settings were overwritten: %+v", p)
	}
	if p.Seed != 12345 {
		t.Errorf("explicit seed overwritten: got %d", p.Seed)
	}
	if p.Resolution != "1024x1024" || p.BatchSize != 4 {
		t.Errorf("explicit resolution/batch overwritten: %+v", p)
	}
	// Missing keys still get defaults.
	if p.Scheduler != "normal" || p.Denoise != 1.0 || p.LoraWeight != 1.0 {
		t.Errorf("missing keys not defaulted: %+v", p)
	}
}

func TestImageRecordMerge(t *testing.T) {
	orig := &ImageRecord{FilePath: "/out/a.png", FileName: "a.png", Width: 512, Height: 768}
	refreshed := &ImageRecord{FilePath: "/out/a.png", FileName: "a.png", Width: 512, Height: 768, ModTime: 99, Model: "flux"}

	orig.Merge(refreshed)
	if orig.ModTime != 99 || orig.Model != "flux" {
		t.Errorf("merge did not copy refreshed fields: %+v", orig)
	}
	if orig.FilePath != "/out/a.png" {
		t.Errorf("merge changed identity: %s", orig.FilePath)
	}
}

func TestQueueSnapshotActiveCount(t *testing.T) {
	var nilSnap *QueueSnapshot
	if nilSnap.ActiveCount() != 0 {
		t.Error("nil snapshot should report zero active jobs")
	}

	snap := &QueueSnapshot{
		Pending:        []QueueTask{{ID: "1", Status: "running"}, {ID: "2", Status: "pending"}},
		QueueRemaining: 1,
	}
	if got := snap.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount = %d; want 2", got)
	}

	// Backend may report remaining jobs it has not yet enumerated.
	snap = &QueueSnapshot{QueueRemaining: 5}
	if got := snap.ActiveCount(); got != 5 {
		t.Errorf("ActiveCount = %d; want 5", got)
	}
}
