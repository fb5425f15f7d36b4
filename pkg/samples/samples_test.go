package samples

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/item"
	"github.com/matzehuels/flowgrid/pkg/metrics"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{in: "#ff8000", want: color.NRGBA{255, 128, 0, 255}},
		{in: "#f80", want: color.NRGBA{255, 136, 0, 255}},
		{in: "10, 20, 30", want: color.NRGBA{10, 20, 30, 255}},
		{in: "darkgray", want: color.NRGBA{64, 64, 64, 255}},
		{in: "Dark_Gray", want: color.NRGBA{64, 64, 64, 255}},
		{in: "light gray", want: color.NRGBA{192, 192, 192, 255}},
		{in: "#12345", wantErr: true},
		{in: "#gggggg", wantErr: true},
		{in: "1,2,300", wantErr: true},
		{in: "mauve", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseAspect(t *testing.T) {
	h, v, err := ParseAspect("16:9")
	if err != nil || h != 16 || v != 9 {
		t.Errorf("ParseAspect(16:9) = %d, %d, %v", h, v, err)
	}
	for _, bad := range []string{"3", "3:2:1", "a:b", "0:2", "-3:2"} {
		if _, _, err := ParseAspect(bad); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("ParseAspect(%q) error = %v, want INVALID_INPUT", bad, err)
		}
	}
}

func TestFrame(t *testing.T) {
	land, port := Frame(3, 2, 3000)
	if land != image.Pt(3000, 2000) || port != image.Pt(2000, 3000) {
		t.Errorf("Frame(3:2, 3000) = %v, %v", land, port)
	}
	// A tall aspect keeps the long edge horizontal for landscape.
	land, _ = Frame(1, 2, 100)
	if land != image.Pt(100, 200) {
		t.Errorf("Frame(1:2, 100) landscape = %v, want (100,200)", land)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"no dir", func(o *Options) { o.Dir = "" }},
		{"zero count", func(o *Options) { o.Count = 0 }},
		{"fraction above one", func(o *Options) { o.PortraitFraction = 1.5 }},
		{"negative fraction", func(o *Options) { o.PortraitFraction = -0.1 }},
		{"zero long edge", func(o *Options) { o.LongEdge = 0 }},
		{"bad aspect", func(o *Options) { o.Aspect = "wide" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			if err := opts.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
	if err := DefaultOptions().Validate(); err != nil {
		t.Errorf("DefaultOptions().Validate() = %v", err)
	}
}

func smallOptions(t *testing.T) Options {
	opts := DefaultOptions()
	opts.Dir = filepath.Join(t.TempDir(), "out")
	opts.Count = 6
	opts.LongEdge = 120
	seed := uint64(7)
	opts.Seed = &seed
	return opts
}

func TestGenerate(t *testing.T) {
	opts := smallOptions(t)

	var calls int
	items, err := Generate(context.Background(), opts, func(done, total int, it item.Item) {
		calls++
		if done != calls || total != opts.Count {
			t.Errorf("progress(%d, %d), want (%d, %d)", done, total, calls, opts.Count)
		}
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(items) != opts.Count || calls != opts.Count {
		t.Fatalf("items = %d, progress calls = %d, want %d", len(items), calls, opts.Count)
	}
	if items[0].Src != "0001.jpg" || items[5].ID != "0006" {
		t.Errorf("naming = %q / %q", items[0].Src, items[5].ID)
	}

	resolver := metrics.NewFileResolver(opts.Dir)
	for _, it := range items {
		if r := it.AspectRatio; r != 1.5 && r != 80.0/120.0 {
			t.Errorf("%s ratio = %v, want 3:2 or 2:3", it.ID, r)
		}
		d, err := resolver.Resolve(context.Background(), it.Src)
		if err != nil {
			t.Fatalf("resolve %s: %v", it.Src, err)
		}
		if float64(d.Width) != it.Width || float64(d.Height) != it.Height {
			t.Errorf("%s decoded %dx%d, listed %vx%v", it.Src, d.Width, d.Height, it.Width, it.Height)
		}
	}

	inputs, err := item.ReadInputsFile(filepath.Join(opts.Dir, ItemsFile))
	if err != nil {
		t.Fatalf("read items file: %v", err)
	}
	if len(inputs) != opts.Count {
		t.Errorf("items file lists %d items, want %d", len(inputs), opts.Count)
	}
}

func TestGenerateSeedIsReproducible(t *testing.T) {
	a, err := Generate(context.Background(), smallOptions(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(context.Background(), smallOptions(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i].Width != b[i].Width {
			t.Errorf("image %d orientation differs between runs with the same seed", i+1)
		}
	}
}

func TestGenerateZeroSeedIsReproducible(t *testing.T) {
	orientations := func() string {
		opts := smallOptions(t)
		opts.Count = 12
		zero := uint64(0)
		opts.Seed = &zero
		items, err := Generate(context.Background(), opts, nil)
		if err != nil {
			t.Fatal(err)
		}
		var b strings.Builder
		for _, it := range items {
			if it.Height > it.Width {
				b.WriteByte('P')
			} else {
				b.WriteByte('L')
			}
		}
		return b.String()
	}
	if a, b := orientations(), orientations(); a != b {
		t.Errorf("seed 0 orientations differ: %s vs %s", a, b)
	}
}

func TestGenerateOrientationExtremes(t *testing.T) {
	for _, frac := range []float64{0, 1} {
		opts := smallOptions(t)
		opts.PortraitFraction = frac
		items, err := Generate(context.Background(), opts, nil)
		if err != nil {
			t.Fatal(err)
		}
		for _, it := range items {
			portrait := it.Height > it.Width
			if portrait != (frac == 1) {
				t.Errorf("fraction %v produced %vx%v", frac, it.Width, it.Height)
			}
		}
	}
}

func TestGenerateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Generate(ctx, smallOptions(t), nil); err != context.Canceled {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
}

func TestRenderDrawsLabel(t *testing.T) {
	fc, err := newFaceCache()
	if err != nil {
		t.Fatal(err)
	}
	bg := color.NRGBA{64, 64, 64, 255}
	img := fc.render("12", image.Pt(200, 100), bg, color.NRGBA{255, 255, 255, 255})

	var ink int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y) != bg {
				ink++
			}
		}
	}
	if ink == 0 {
		t.Error("label was not drawn")
	}
	if ink > 200*100*8/10 {
		t.Errorf("label covers %d pixels, more than the 80%% box", ink)
	}
}
