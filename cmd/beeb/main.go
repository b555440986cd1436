// Command beeb runs a BBC Microcomputer emulation core headlessly
// behind a network debugger/video/keyboard service, optionally mirroring
// the output to a local SDL2 window for development.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jmchacon/beeb/bank"
	"github.com/jmchacon/beeb/machine"
	"github.com/jmchacon/beeb/model"
	"github.com/jmchacon/beeb/render"
	"github.com/jmchacon/beeb/romload"
	"github.com/jmchacon/beeb/server"
	"github.com/veandco/go-sdl2/sdl"
	xdraw "golang.org/x/image/draw"
)

// defaultPort is 0xBEEB, the port spec.md's CLI surface names by default.
const defaultPort = 0xBEEB

// romSpec is one --rom slot:path flag occurrence.
type romSpec struct {
	slot int
	path string
}

// romFlags accumulates repeated --rom flag occurrences; flag.Value lets
// the same flag name be passed more than once on one command line.
type romFlags []romSpec

func (r *romFlags) String() string { return fmt.Sprintf("%v", []romSpec(*r)) }

func (r *romFlags) Set(v string) error {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("--rom must be slot:path, got %q", v)
	}
	slot, err := strconv.Atoi(parts[0])
	if err != nil || slot < 0 || slot >= bank.NumSlots {
		return fmt.Errorf("--rom slot must be 0-%d, got %q", bank.NumSlots-1, parts[0])
	}
	*r = append(*r, romSpec{slot: slot, path: parts[1]})
	return nil
}

var (
	mosPath    = flag.String("mos", "", "Path to the MOS ROM image")
	roms       romFlags
	romDirFlag = flag.String("rom-dir", "", "Directory to search for ROM images named by --rom/--mos (default: search order in spec)")
	port       = flag.Int("port", defaultPort, "Port for the debugger/video/keyboard HTTP service")
	pprofPort  = flag.Int("pprof-port", 0, "If nonzero, serve net/http/pprof on this port")
	modelSel   = flag.String("model", "bplus", "Hardware profile to emulate: b or bplus")
	info       = flag.Bool("info", false, "Print a JSON description of the machine and exit")
	version    = flag.Bool("version", false, "Print version and exit")
	display    = flag.Bool("display", false, "Open a local SDL2 window mirroring the emulated display")
	scale      = flag.Int("scale", 1, "Integer scale factor for the optional -display window")
)

const buildVersion = "0.1.0"

func init() {
	flag.Var(&roms, "rom", "slot:path sideways ROM image to load at startup; may be repeated")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", os.Args[0])
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	if *version {
		fmt.Println(buildVersion)
		os.Exit(0)
	}

	hw, sideways, err := buildProfile(*modelSel)
	if err != nil {
		log.Printf("beeb: %v", err)
		os.Exit(1)
	}

	if err := loadROMs(hw, sideways); err != nil {
		log.Printf("beeb: %v", err)
		os.Exit(1)
	}

	if *info {
		printInfo(hw)
		os.Exit(0)
	}

	m, err := machine.New(hw)
	if err != nil {
		log.Printf("beeb: %v", err)
		os.Exit(1)
	}
	m.Reset()

	hw.EnableVideoOutput(0)
	renderer := render.NewRenderer(hw.VideoQueue())

	go driveEmulation(m, renderer)

	if *display {
		go runDisplay(renderer)
	}

	if *pprofPort != 0 {
		go func() {
			log.Println(http.ListenAndServe(fmt.Sprintf("localhost:%d", *pprofPort), nil))
		}()
	}

	srv := server.New(m, renderer)
	addr := fmt.Sprintf(":%d", *port)
	if err := srv.ListenAndServe(addr); err != nil {
		log.Printf("beeb: %v", err)
		os.Exit(1)
	}
}

// buildProfile constructs the selected hardware profile and returns its
// concrete *bank.Sideways too, since model.Profile doesn't expose it
// directly (only LoadMOS/LoadBasic/LoadDFS, the three fixed-ROM slots a
// --rom flag can't target).
func buildProfile(sel string) (model.Profile, *bank.Sideways, error) {
	switch strings.ToLower(sel) {
	case "b":
		b := model.NewB()
		return b, b.Sideways, nil
	case "bplus":
		b := model.NewBPlus()
		return b, b.Sideways, nil
	default:
		return nil, nil, fmt.Errorf("--model must be b or bplus, got %q", sel)
	}
}

func loadROMs(hw model.Profile, sideways *bank.Sideways) error {
	dir, dirErr := romload.FindROMDirectory(*romDirFlag)

	resolve := func(name string) (string, error) {
		if dirErr != nil && !strings.Contains(name, "/") {
			return "", dirErr
		}
		return romload.FindROM(dir, name)
	}

	if *mosPath != "" {
		path, err := resolve(*mosPath)
		if err != nil {
			return err
		}
		if err := romload.Load(path, hw.LoadMOS); err != nil {
			return err
		}
	}

	for _, rs := range roms {
		path, err := resolve(rs.path)
		if err != nil {
			return err
		}
		if err := romload.LoadSideways(sideways, rs.slot, path); err != nil {
			return err
		}
	}
	return nil
}

func printInfo(hw model.Profile) {
	type info struct {
		Model   string                   `json:"model"`
		Regions []model.RegionDescriptor `json:"regions"`
	}
	out := info{Model: *modelSel, Regions: hw.Regions()}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Printf("beeb: %v", err)
		return
	}
	fmt.Println(string(data))
}

// driveEmulation is the emulation thread: it runs the machine in bounded
// slices, checking WaitIfPaused between them (the one suspension point
// the driver loop owns per the core's concurrency design), and drains
// the renderer opportunistically so the queue never backs up behind a
// slow HTTP consumer.
func driveEmulation(m *machine.Machine, r *render.Renderer) {
	const sliceSize = 20000 // ~10ms of 2 MHz cycles
	for {
		m.WaitIfPaused()
		if _, err := m.Run(sliceSize); err != nil {
			log.Printf("beeb: machine halted: %v", err)
		}
		r.Drain()
	}
}

// runDisplay opens an SDL2 window and blits newly rendered frames into
// it, scaling with golang.org/x/image/draw the way a software renderer
// without hardware scaling support would.
func runDisplay(r *render.Renderer) {
	sdl.Main(func() {
		var wg sync.WaitGroup
		wg.Add(1)
		var window *sdl.Window
		var surface *sdl.Surface
		sdl.Do(func() {
			defer wg.Done()
			if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
				log.Printf("beeb: sdl init: %v", err)
				return
			}
			w, err := sdl.CreateWindow("beeb", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
				int32(render.Width**scale), int32(render.Height**scale), sdl.WINDOW_SHOWN)
			if err != nil {
				log.Printf("beeb: sdl window: %v", err)
				return
			}
			window = w
			surface, err = window.GetSurface()
			if err != nil {
				log.Printf("beeb: sdl surface: %v", err)
			}
		})
		wg.Wait()
		if window == nil {
			return
		}
		defer sdl.Do(func() { window.Destroy() })

		fb := r.FrameBuffer()
		var lastVersion uint64
		for {
			quit := false
			sdl.Do(func() {
				for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
					if _, ok := ev.(*sdl.QuitEvent); ok {
						quit = true
					}
				}
			})
			if quit {
				return
			}

			if v := fb.Version(); v != lastVersion {
				lastVersion = v
				src := render.ToRGBA(fb.ReadFrame(), render.Width, render.Height)
				sdl.Do(func() {
					blit(surface, src)
					window.UpdateSurface()
				})
			}
			time.Sleep(16 * time.Millisecond)
		}
	})
}

// blit scales src onto surface's full bounds using a high-quality
// resampler, poking pixels directly into the surface buffer in the
// manner of the teacher's fastImage.Set (avoiding the per-pixel
// color.Color conversion overhead draw.Draw would otherwise incur
// through a generic destination image.Image).
func blit(surface *sdl.Surface, src *image.RGBA) {
	dst := &directSurface{surface: surface}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
}

// directSurface adapts an *sdl.Surface to image.Image/draw.Image so
// golang.org/x/image/draw can scale straight into its pixel buffer.
type directSurface struct {
	surface *sdl.Surface
}

func (d *directSurface) ColorModel() color.Model { return color.RGBAModel }

func (d *directSurface) Bounds() image.Rectangle {
	return image.Rect(0, 0, int(d.surface.W), int(d.surface.H))
}

func (d *directSurface) At(x, y int) color.Color {
	i := int32(y)*d.surface.Pitch + int32(x)*int32(d.surface.Format.BytesPerPixel)
	px := d.surface.Pixels()
	return color.RGBA{R: px[i], G: px[i+1], B: px[i+2], A: px[i+3]}
}

func (d *directSurface) Set(x, y int, c color.Color) {
	r, g, b, a := c.RGBA()
	i := int32(y)*d.surface.Pitch + int32(x)*int32(d.surface.Format.BytesPerPixel)
	px := d.surface.Pixels()
	px[i+0] = uint8(r >> 8)
	px[i+1] = uint8(g >> 8)
	px[i+2] = uint8(b >> 8)
	px[i+3] = uint8(a >> 8)
}
