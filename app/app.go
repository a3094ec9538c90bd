// Package app owns the window and the main loop: it creates the GLFW window,
// wires window events into the renderer and drives one frame per iteration
// until the window closes.
package app

import (
	"log"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/embervk/embervk/clock"
	"github.com/embervk/embervk/render"
	"github.com/embervk/embervk/spv"
)

// frameRenderer is the slice of the renderer the loop needs.
type frameRenderer interface {
	RenderFrame() error
	NotifyResize()
	Shutdown()
}

// App ties the window, renderer and clock together. Create with New, drive
// with Run, release with Close. All methods must run on the main thread.
type App struct {
	cfg      Config
	log      *log.Logger
	window   *glfw.Window
	renderer frameRenderer
	clock    *clock.Clock

	// minimized suppresses rendering while the framebuffer has zero area.
	minimized bool
}

// New creates the window and the rendering context. GLFW must already be
// initialized on the calling thread.
func New(cfg Config) (*App, error) {
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "app: config")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	resizable := glfw.False
	if cfg.Window.Resizable {
		resizable = glfw.True
	}
	glfw.WindowHint(glfw.Resizable, resizable)

	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "app: create window")
	}

	vert, err := spv.Load(cfg.Shaders.Vertex)
	if err != nil {
		window.Destroy()
		return nil, err
	}
	frag, err := spv.Load(cfg.Shaders.Fragment)
	if err != nil {
		window.Destroy()
		return nil, err
	}

	renderer, err := render.New(window, render.Options{
		AppName:          cfg.Window.Title,
		FramesInFlight:   cfg.Renderer.FramesInFlight,
		EnableValidation: cfg.Renderer.Validation,
		VertexShader:     vert,
		FragmentShader:   frag,
	})
	if err != nil {
		window.Destroy()
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		log:      log.Default(),
		window:   window,
		renderer: renderer,
		clock:    clock.New(cfg.Clock.TargetFPS),
	}
	a.installCallbacks()
	return a, nil
}

func (a *App) installCallbacks() {
	a.window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		a.onFramebufferResize(width, height)
	})
	a.window.SetIconifyCallback(func(_ *glfw.Window, iconified bool) {
		a.onIconify(iconified)
	})
}

func (a *App) onFramebufferResize(width, height int) {
	if width == 0 || height == 0 {
		a.minimized = true
		return
	}
	a.minimized = false
	a.renderer.NotifyResize()
}

func (a *App) onIconify(iconified bool) {
	a.minimized = iconified
	if !iconified {
		a.renderer.NotifyResize()
	}
}

// Run drives the main loop until the window is closed or a frame fails.
func (a *App) Run() error {
	a.log.Println("app: entering main loop")
	for !a.window.ShouldClose() {
		a.clock.Tick()
		glfw.PollEvents()
		if err := a.step(); err != nil {
			return err
		}
	}
	a.log.Println("app: main loop finished")
	return nil
}

// step renders one frame unless the window is minimized, in which case the
// loop idles on events only.
func (a *App) step() error {
	if a.minimized {
		return nil
	}
	return a.renderer.RenderFrame()
}

// Close shuts the renderer down and destroys the window.
func (a *App) Close() {
	a.renderer.Shutdown()
	a.window.Destroy()
}
