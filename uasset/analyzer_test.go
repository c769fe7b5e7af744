package uasset_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kurahq/kura/uasset"
)

func TestAnalyze(t *testing.T) {
	var (
		ctx  = context.Background()
		data = []byte("hello world")
	)

	analysis, err := uasset.Analyze(ctx, "/tmp/Mesh.uasset", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	if analysis.Name != "Mesh.uasset" {
		t.Errorf("expected Mesh.uasset, got %s", analysis.Name)
	}

	if analysis.Size != 11 {
		t.Errorf("expected size 11, got %d", analysis.Size)
	}

	if analysis.MD5 != "5eb63bbbe01eeed093cb22bb8f5acdc3" {
		t.Errorf("unexpected md5 %s", analysis.MD5)
	}

	if analysis.SHA1 != "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed" {
		t.Errorf("unexpected sha1 %s", analysis.SHA1)
	}

	if analysis.Digest.String() != "sha256:b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9" {
		t.Errorf("unexpected digest %s", analysis.Digest)
	}

	// Small files get no hex preview.
	if len(analysis.Preview) != 0 {
		t.Errorf("expected no preview, got %d bytes", len(analysis.Preview))
	}

	if len(analysis.Strings) != 1 || analysis.Strings[0] != "hello world" {
		t.Errorf("unexpected strings %v", analysis.Strings)
	}
}

func TestAnalyzePreview(t *testing.T) {
	var (
		ctx  = context.Background()
		data = make([]byte, 150)
	)
	copy(data, "ObjectProperty")

	analysis, err := uasset.Analyze(ctx, "big.uexp", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	if len(analysis.Preview) != uasset.PreviewSize {
		t.Errorf("expected a %d byte preview, got %d", uasset.PreviewSize, len(analysis.Preview))
	}

	if !bytes.Equal(analysis.Preview, data[:uasset.PreviewSize]) {
		t.Error("preview does not match the leading bytes")
	}
}

func TestStrings(t *testing.T) {
	data := []byte("abc\x00ObjectProperty\x01/Game/Meshes/SM_Rock\xffok")

	strs := uasset.Strings(data)
	if len(strs) != 2 {
		t.Fatalf("expected 2 strings, got %d: %v", len(strs), strs)
	}

	if strs[0] != "ObjectProperty" {
		t.Errorf("unexpected string %q", strs[0])
	}

	if strs[1] != "/Game/Meshes/SM_Rock" {
		t.Errorf("unexpected string %q", strs[1])
	}
}

func TestStringsTrailingRun(t *testing.T) {
	data := []byte("\x00\x01SkeletalMesh")

	strs := uasset.Strings(data)
	if len(strs) != 1 {
		t.Fatalf("expected 1 string, got %d: %v", len(strs), strs)
	}

	if strs[0] != "SkeletalMesh" {
		t.Errorf("unexpected string %q", strs[0])
	}
}

func TestStringsCap(t *testing.T) {
	data := bytes.Repeat([]byte("name\x00"), uasset.MaxStrings+5)

	if strs := uasset.Strings(data); len(strs) != uasset.MaxStrings {
		t.Errorf("expected %d strings, got %d", uasset.MaxStrings, len(strs))
	}
}

func TestAnalysisText(t *testing.T) {
	var (
		ctx  = context.Background()
		data = []byte("hello world")
	)

	analysis, err := uasset.Analyze(ctx, "Mesh.uasset", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	text := analysis.Text()
	for _, want := range []string{
		"UAsset Analysis",
		"File: Mesh.uasset",
		"Size: 11 bytes",
		"MD5: 5eb63bbbe01eeed093cb22bb8f5acdc3",
		"Found strings:",
		"  hello world",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("analysis text missing %q:\n%s", want, text)
		}
	}
}
