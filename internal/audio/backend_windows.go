//go:build windows

// ABOUTME: Core Audio backend built on go-wca.
// ABOUTME: Enumerates MMDevice endpoints and their audio sessions and wraps the volume interfaces.

package audio

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"
	"golang.org/x/sys/windows"

	"github.com/777genius/vccli/internal/logging"
	"github.com/777genius/vccli/internal/volume"
)

const (
	sFalse                   = 0x00000001
	audclntSNoSingleProcess  = 0x0889000D
	audclntEDeviceInvalidate = 0x88890004
)

// wasapiBackend must be used from the goroutine that created it;
// the OS thread stays locked until Close.
type wasapiBackend struct {
	mmde *wca.IMMDeviceEnumerator
}

func newPlatformBackend() (Backend, error) {
	runtime.LockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			runtime.UnlockOSThread()
			return nil, fmt.Errorf("failed to initialize COM: %w", err)
		}
	}

	var mmde *wca.IMMDeviceEnumerator
	if err := wca.CoCreateInstance(wca.CLSID_MMDeviceEnumerator, 0, wca.CLSCTX_ALL, wca.IID_IMMDeviceEnumerator, &mmde); err != nil {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("failed to create device enumerator: %w", err)
	}

	logging.Debug("Core Audio device enumerator created")
	return &wasapiBackend{mmde: mmde}, nil
}

func (b *wasapiBackend) Close() error {
	if b.mmde != nil {
		b.mmde.Release()
		b.mmde = nil
		ole.CoUninitialize()
		runtime.UnlockOSThread()
	}
	return nil
}

func dataFlow(f volume.Flow) uint32 {
	switch f {
	case volume.Render:
		return wca.ERender
	case volume.Capture:
		return wca.ECapture
	default:
		return wca.EAll
	}
}

// eachDevice calls fn for every active device of the requested flows.
// The device is released after fn returns.
func (b *wasapiBackend) eachDevice(flow volume.Flow, fn func(dev *wca.IMMDevice, f volume.Flow, defaultID string) error) error {
	for _, f := range expandFlow(flow) {
		defaultID := b.defaultID(f)

		var dc *wca.IMMDeviceCollection
		if err := b.mmde.EnumAudioEndpoints(dataFlow(f), wca.DEVICE_STATE_ACTIVE, &dc); err != nil {
			return fmt.Errorf("EnumAudioEndpoints(%s): %w", f, err)
		}

		var count uint32
		if err := dc.GetCount(&count); err != nil {
			dc.Release()
			return fmt.Errorf("IMMDeviceCollection.GetCount: %w", err)
		}

		for i := uint32(0); i < count; i++ {
			var dev *wca.IMMDevice
			if err := dc.Item(i, &dev); err != nil {
				logging.Warn("Skipping device %d: %v", i, err)
				continue
			}
			err := fn(dev, f, defaultID)
			dev.Release()
			if err != nil {
				dc.Release()
				return err
			}
		}
		dc.Release()
	}
	return nil
}

func (b *wasapiBackend) defaultID(f volume.Flow) string {
	var dev *wca.IMMDevice
	if err := b.mmde.GetDefaultAudioEndpoint(dataFlow(f), wca.EMultimedia, &dev); err != nil {
		logging.Debug("No default %s device: %v", f, err)
		return ""
	}
	defer dev.Release()

	var id string
	if err := dev.GetId(&id); err != nil {
		return ""
	}
	return id
}

func (b *wasapiBackend) Endpoints(flow volume.Flow) ([]*volume.Endpoint, error) {
	var endpoints []*volume.Endpoint
	err := b.eachDevice(flow, func(dev *wca.IMMDevice, f volume.Flow, defaultID string) error {
		e, err := openEndpoint(dev, f, defaultID)
		if err != nil {
			logging.Warn("Skipping device: %v", err)
			return nil
		}
		endpoints = append(endpoints, e)
		return nil
	})
	if err != nil {
		for _, e := range endpoints {
			e.Release()
		}
		return nil, err
	}
	return endpoints, nil
}

func (b *wasapiBackend) DefaultEndpoint(flow volume.Flow) (*volume.Endpoint, error) {
	var dev *wca.IMMDevice
	if err := b.mmde.GetDefaultAudioEndpoint(dataFlow(flow), wca.EMultimedia, &dev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	defer dev.Release()

	var id string
	if err := dev.GetId(&id); err != nil {
		return nil, fmt.Errorf("IMMDevice.GetId: %w", err)
	}
	return openEndpoint(dev, flow, id)
}

func openEndpoint(dev *wca.IMMDevice, f volume.Flow, defaultID string) (*volume.Endpoint, error) {
	var id string
	if err := dev.GetId(&id); err != nil {
		return nil, fmt.Errorf("IMMDevice.GetId: %w", err)
	}

	props, err := readProperties(dev)
	if err != nil {
		return nil, err
	}

	var aev *wca.IAudioEndpointVolume
	if err := dev.Activate(wca.IID_IAudioEndpointVolume, wca.CLSCTX_ALL, nil, &aev); err != nil {
		return nil, fmt.Errorf("activate IAudioEndpointVolume on %s: %w", props.name, err)
	}

	return volume.NewEndpoint(&endpointHandle{aev: aev}, volume.EndpointInfo{
		ID:            id,
		Name:          props.name,
		Description:   props.description,
		InterfaceName: props.interfaceName,
		Flow:          f,
		IsDefault:     id != "" && id == defaultID,
	}), nil
}

type deviceProperties struct {
	name          string
	description   string
	interfaceName string
}

func readProperties(dev *wca.IMMDevice) (deviceProperties, error) {
	var ps *wca.IPropertyStore
	if err := dev.OpenPropertyStore(wca.STGM_READ, &ps); err != nil {
		return deviceProperties{}, fmt.Errorf("IMMDevice.OpenPropertyStore: %w", err)
	}
	defer ps.Release()

	get := func(key *wca.PROPERTYKEY) string {
		var pv wca.PROPVARIANT
		if err := ps.GetValue(key, &pv); err != nil {
			return ""
		}
		return pv.String()
	}

	return deviceProperties{
		name:          get(&wca.PKEY_Device_FriendlyName),
		description:   get(&wca.PKEY_Device_DeviceDesc),
		interfaceName: get(&wca.PKEY_DeviceInterface_FriendlyName),
	}, nil
}

func (b *wasapiBackend) Sessions(flow volume.Flow) ([]*volume.Session, error) {
	var sessions []*volume.Session
	err := b.eachDevice(flow, func(dev *wca.IMMDevice, f volume.Flow, _ string) error {
		found, err := deviceSessions(dev, f)
		if err != nil {
			logging.Warn("Skipping sessions of device: %v", err)
			return nil
		}
		sessions = append(sessions, found...)
		return nil
	})
	if err != nil {
		for _, s := range sessions {
			s.Release()
		}
		return nil, err
	}
	return sessions, nil
}

func deviceSessions(dev *wca.IMMDevice, f volume.Flow) ([]*volume.Session, error) {
	var deviceID string
	if err := dev.GetId(&deviceID); err != nil {
		return nil, fmt.Errorf("IMMDevice.GetId: %w", err)
	}
	props, err := readProperties(dev)
	if err != nil {
		return nil, err
	}

	var asm2 *wca.IAudioSessionManager2
	if err := dev.Activate(wca.IID_IAudioSessionManager2, wca.CLSCTX_ALL, nil, &asm2); err != nil {
		return nil, fmt.Errorf("activate IAudioSessionManager2 on %s: %w", props.name, err)
	}
	defer asm2.Release()

	var enum *wca.IAudioSessionEnumerator
	if err := asm2.GetSessionEnumerator(&enum); err != nil {
		return nil, fmt.Errorf("IAudioSessionManager2.GetSessionEnumerator: %w", err)
	}
	defer enum.Release()

	var count int
	if err := enum.GetCount(&count); err != nil {
		return nil, fmt.Errorf("IAudioSessionEnumerator.GetCount: %w", err)
	}

	sessions := make([]*volume.Session, 0, count)
	for i := 0; i < count; i++ {
		s, err := openSession(enum, i, volume.SessionInfo{
			DeviceID:   deviceID,
			DeviceName: props.name,
			Flow:       f,
		})
		if err != nil {
			logging.Debug("Skipping session %d on %s: %v", i, props.name, err)
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func openSession(enum *wca.IAudioSessionEnumerator, i int, info volume.SessionInfo) (*volume.Session, error) {
	var ctl *wca.IAudioSessionControl
	if err := enum.GetSession(i, &ctl); err != nil {
		return nil, fmt.Errorf("IAudioSessionEnumerator.GetSession: %w", err)
	}
	defer ctl.Release()

	dispatch, err := ctl.QueryInterface(wca.IID_IAudioSessionControl2)
	if err != nil {
		return nil, fmt.Errorf("query IAudioSessionControl2: %w", err)
	}
	ctl2 := (*wca.IAudioSessionControl2)(unsafe.Pointer(dispatch))
	defer ctl2.Release()

	if err := ctl2.GetProcessId(&info.PID); err != nil {
		var oleErr *ole.OleError
		// multi-process sessions still report the creating process
		if !errors.As(err, &oleErr) || oleErr.Code() != audclntSNoSingleProcess {
			return nil, fmt.Errorf("IAudioSessionControl2.GetProcessId: %w", err)
		}
	}

	info.SystemSounds = ctl2.IsSystemSoundsSession() == nil
	_ = ctl2.GetDisplayName(&info.DisplayName)
	_ = ctl2.GetSessionIdentifier(&info.SessionIdentifier)
	_ = ctl2.GetSessionInstanceIdentifier(&info.InstanceIdentifier)

	var state uint32
	if err := ctl2.GetState(&state); err == nil {
		info.State = volume.SessionState(state)
	}

	if info.SystemSounds {
		if info.DisplayName == "" || strings.HasPrefix(info.DisplayName, "@") {
			info.DisplayName = "System Sounds"
		}
	} else if name, err := processName(info.PID); err == nil {
		info.ProcessName = name
	} else {
		logging.Debug("Process name of pid %d unavailable: %v", info.PID, err)
	}

	dispatch, err = ctl2.QueryInterface(wca.IID_ISimpleAudioVolume)
	if err != nil {
		return nil, fmt.Errorf("query ISimpleAudioVolume: %w", err)
	}
	sav := (*wca.ISimpleAudioVolume)(unsafe.Pointer(dispatch))

	return volume.NewSession(&sessionHandle{sav: sav}, info), nil
}

// processName returns the extension-less image name of a process
func processName(pid uint32) (string, error) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return "", fmt.Errorf("OpenProcess(%d): %w", pid, err)
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_LONG_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return "", fmt.Errorf("QueryFullProcessImageName(%d): %w", pid, err)
	}

	base := filepath.Base(windows.UTF16ToString(buf[:size]))
	return strings.TrimSuffix(base, filepath.Ext(base)), nil
}

// comError maps a device-invalidated HRESULT onto ErrNotFound
func comError(err error) error {
	var oleErr *ole.OleError
	if errors.As(err, &oleErr) && oleErr.Code() == audclntEDeviceInvalidate {
		return fmt.Errorf("%w: audio device was removed", ErrNotFound)
	}
	return err
}

type sessionHandle struct {
	sav *wca.ISimpleAudioVolume
}

func (h *sessionHandle) Level() (float32, error) {
	var level float32
	err := h.sav.GetMasterVolume(&level)
	return level, comError(err)
}

func (h *sessionHandle) SetLevel(level float32) error {
	return comError(h.sav.SetMasterVolume(level, nil))
}

func (h *sessionHandle) Muted() (bool, error) {
	var muted bool
	err := h.sav.GetMute(&muted)
	return muted, comError(err)
}

func (h *sessionHandle) SetMuted(muted bool) error {
	return comError(h.sav.SetMute(muted, nil))
}

func (h *sessionHandle) Release() {
	h.sav.Release()
}

type endpointHandle struct {
	aev *wca.IAudioEndpointVolume
}

func (h *endpointHandle) Level() (float32, error) {
	var level float32
	err := h.aev.GetMasterVolumeLevelScalar(&level)
	return level, comError(err)
}

func (h *endpointHandle) SetLevel(level float32) error {
	return comError(h.aev.SetMasterVolumeLevelScalar(level, nil))
}

func (h *endpointHandle) Muted() (bool, error) {
	var muted bool
	err := h.aev.GetMute(&muted)
	return muted, comError(err)
}

func (h *endpointHandle) SetMuted(muted bool) error {
	return comError(h.aev.SetMute(muted, nil))
}

func (h *endpointHandle) Release() {
	h.aev.Release()
}
