package render

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slices"
)

const validationLayerName = "VK_LAYER_KHRONOS_validation"

// requiredDeviceExtensions are hard requirements for device selection.
// Presentation needs the swapchain extension, nothing else.
var requiredDeviceExtensions = []string{"VK_KHR_swapchain"}

// queueFamilyIndices holds the resolved graphics and presentation queue
// families on the selected device. They may name the same family.
type queueFamilyIndices struct {
	graphics    uint32
	present     uint32
	hasGraphics bool
	hasPresent  bool
}

func (q queueFamilyIndices) complete() bool {
	return q.hasGraphics && q.hasPresent
}

func (q queueFamilyIndices) separate() bool {
	return q.graphics != q.present
}

// findQueueFamilies resolves the first graphics-capable family and the first
// present-capable family from the given properties. Present capability is
// surface-dependent, so it is supplied as a callback.
func findQueueFamilies(props []vk.QueueFamilyProperties, supportsPresent func(family uint32) bool) (queueFamilyIndices, bool) {
	var q queueFamilyIndices
	for i := range props {
		props[i].Deref()
		family := uint32(i)
		if !q.hasGraphics && props[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			q.graphics = family
			q.hasGraphics = true
		}
		if !q.hasPresent && supportsPresent(family) {
			q.present = family
			q.hasPresent = true
		}
		if q.complete() {
			return q, true
		}
	}
	return q, false
}

// missingExtensions reports which required names are absent from actual.
func missingExtensions(actual, required []string) []string {
	var missing []string
	for _, req := range required {
		if !slices.Contains(actual, req) {
			missing = append(missing, req)
		}
	}
	return missing
}

func (r *Renderer) createInstance() error {
	extensions := safeStrings(r.window.GetRequiredInstanceExtensions())
	var layers []string
	if r.opts.EnableValidation {
		available, err := instanceLayers()
		if err != nil {
			return err
		}
		if !slices.Contains(available, validationLayerName) {
			return errors.Newf("vulkan: validation requested but %s is not installed", validationLayerName)
		}
		layers = safeStrings([]string{validationLayerName})
		extensions = append(extensions, safeString("VK_EXT_debug_report"))
	}

	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			PApplicationName:   safeString(r.opts.AppName),
			ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
			PEngineName:        safeString("embervk"),
			EngineVersion:      uint32(vk.MakeVersion(1, 0, 0)),
			ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}, nil, &instance)
	if err := vkErr(ret, "create instance"); err != nil {
		return err
	}
	r.instance = instance
	vk.InitInstance(instance)
	r.log.Printf("vulkan: instance created, %d extensions, %d layers", len(extensions), len(layers))

	if r.opts.EnableValidation {
		return r.setupDebugReport()
	}
	return nil
}

func (r *Renderer) setupDebugReport() error {
	var callback vk.DebugReportCallback
	ret := vk.CreateDebugReportCallback(r.instance, &vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
		PfnCallback: r.debugReportFunc,
	}, nil, &callback)
	if err := vkErr(ret, "create debug report callback"); err != nil {
		return err
	}
	r.debugCallback = callback
	r.log.Println("vulkan: validation layer reports enabled")
	return nil
}

func (r *Renderer) debugReportFunc(flags vk.DebugReportFlags, _ vk.DebugReportObjectType,
	_ uint64, _ uint, messageCode int32, layerPrefix string,
	message string, _ unsafe.Pointer) vk.Bool32 {

	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		r.log.Printf("vulkan: ERROR [%s] code %d: %s", layerPrefix, messageCode, message)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		r.log.Printf("vulkan: WARNING [%s] code %d: %s", layerPrefix, messageCode, message)
	default:
		r.log.Printf("vulkan: [%s] code %d: %s", layerPrefix, messageCode, message)
	}
	return vk.Bool32(vk.False)
}

func (r *Renderer) createSurface() error {
	surfPtr, err := r.window.CreateWindowSurface(r.instance, nil)
	if err != nil {
		return errors.Wrap(err, "create window surface")
	}
	r.surface = vk.SurfaceFromPointer(surfPtr)
	return nil
}

// pickPhysicalDevice selects the first enumerated device that exposes a
// graphics queue family, a present-capable family for the target surface,
// the required device extensions and at least one surface format and present
// mode. Enumeration order breaks ties; devices are not scored.
func (r *Renderer) pickPhysicalDevice() error {
	var count uint32
	ret := vk.EnumeratePhysicalDevices(r.instance, &count, nil)
	if err := vkErr(ret, "enumerate physical devices"); err != nil {
		return err
	}
	if count == 0 {
		return ErrNoDeviceFound
	}
	gpus := make([]vk.PhysicalDevice, count)
	ret = vk.EnumeratePhysicalDevices(r.instance, &count, gpus)
	if err := vkErr(ret, "enumerate physical devices"); err != nil {
		return err
	}

	for _, gpu := range gpus {
		indices, ok := r.resolveQueueFamilies(gpu)
		if !ok {
			continue
		}
		actual, err := deviceExtensionNames(gpu)
		if err != nil {
			return err
		}
		if missing := missingExtensions(actual, requiredDeviceExtensions); len(missing) > 0 {
			continue
		}
		formats, err := surfaceFormats(gpu, r.surface)
		if err != nil {
			return err
		}
		modes, err := surfacePresentModes(gpu, r.surface)
		if err != nil {
			return err
		}
		if len(formats) == 0 || len(modes) == 0 {
			continue
		}

		r.gpu = gpu
		r.queues = indices
		vk.GetPhysicalDeviceProperties(gpu, &r.gpuProps)
		r.gpuProps.Deref()
		r.log.Printf("vulkan: selected device %q (%s), API %s",
			vk.ToString(r.gpuProps.DeviceName[:]),
			deviceTypeString(r.gpuProps.DeviceType),
			apiVersionString(r.gpuProps.ApiVersion))
		return nil
	}
	return ErrNoSuitableDevice
}

func (r *Renderer) resolveQueueFamilies(gpu vk.PhysicalDevice) (queueFamilyIndices, bool) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	if count == 0 {
		return queueFamilyIndices{}, false
	}
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, props)
	return findQueueFamilies(props, func(family uint32) bool {
		var supported vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(gpu, family, r.surface, &supported)
		return supported.B()
	})
}

func (r *Renderer) createLogicalDevice() error {
	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: r.queues.graphics,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}
	if r.queues.separate() {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: r.queues.present,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}

	var layers []string
	if r.opts.EnableValidation {
		layers = safeStrings([]string{validationLayerName})
	}
	var device vk.Device
	ret := vk.CreateDevice(r.gpu, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(requiredDeviceExtensions)),
		PpEnabledExtensionNames: safeStrings(requiredDeviceExtensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}, nil, &device)
	if err := vkErr(ret, "create logical device"); err != nil {
		return err
	}
	r.device = device

	vk.GetDeviceQueue(device, r.queues.graphics, 0, &r.graphicsQueue)
	vk.GetDeviceQueue(device, r.queues.present, 0, &r.presentQueue)
	return nil
}

// instanceLayers lists the validation layers available on the platform.
func instanceLayers() ([]string, error) {
	var count uint32
	ret := vk.EnumerateInstanceLayerProperties(&count, nil)
	if err := vkErr(ret, "enumerate instance layers"); err != nil {
		return nil, err
	}
	list := make([]vk.LayerProperties, count)
	ret = vk.EnumerateInstanceLayerProperties(&count, list)
	if err := vkErr(ret, "enumerate instance layers"); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for i := range list {
		list[i].Deref()
		names = append(names, vk.ToString(list[i].LayerName[:]))
	}
	return names, nil
}

// deviceExtensionNames lists the extensions available on a physical device.
func deviceExtensionNames(gpu vk.PhysicalDevice) ([]string, error) {
	var count uint32
	ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil)
	if err := vkErr(ret, "enumerate device extensions"); err != nil {
		return nil, err
	}
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list)
	if err := vkErr(ret, "enumerate device extensions"); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for i := range list {
		list[i].Deref()
		names = append(names, vk.ToString(list[i].ExtensionName[:]))
	}
	return names, nil
}

func deviceTypeString(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated GPU"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete GPU"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual GPU"
	case vk.PhysicalDeviceTypeCpu:
		return "CPU"
	default:
		return "other"
	}
}
