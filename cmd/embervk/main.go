// Command embervk opens a window and renders a single triangle with Vulkan.
package main

import (
	"flag"
	"log"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"github.com/embervk/embervk/app"
)

func init() {
	// GLFW and the Vulkan surface must live on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	debug := flag.Bool("debug", false, "enable the Vulkan validation layer")
	flag.Parse()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("embervk: %v", err)
	}
	if *debug {
		cfg.Renderer.Validation = true
	}

	if err := glfw.Init(); err != nil {
		log.Fatalf("embervk: glfw init: %v", err)
	}
	defer glfw.Terminate()

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		log.Fatalf("embervk: vulkan init: %v", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("embervk: %v", err)
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		log.Fatalf("embervk: %v", err)
	}
}
