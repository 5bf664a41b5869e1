//go:build windows

package overlay

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"sync"
	"syscall"
	"time"
	"unicode/utf16"
	"unsafe"

	"anemone/src/screen"
	"anemone/src/surface"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const (
	overlayClassName   = "AnemoneOverlay"
	frameTimerID       = 1
	frameIntervalMs    = 16
	ulwAlpha           = 0x00000002
	acSrcOver          = 0x00
	acSrcAlpha         = 0x01
	maNoActivate       = 3
	asyncKeyDownMask   = 0x8000
	asyncKeyPressedBit = 0x0001
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procUpdateLayeredWindow      = user32.NewProc("UpdateLayeredWindow")
	procGetAsyncKeyState         = user32.NewProc("GetAsyncKeyState")
	procIsIconic                 = user32.NewProc("IsIconic")
)

type blendFunction struct {
	BlendOp             byte
	BlendFlags          byte
	SourceConstantAlpha byte
	AlphaFormat         byte
}

type size struct {
	CX, CY int32
}

var (
	registerOnce sync.Once
	registerErr  error
	// Windows by handle, for the shared window procedure. Only touched on
	// the UI thread.
	liveWindows = map[win.HWND]*layeredWindow{}
)

type nativePlatform struct{}

// NewPlatform returns the Win32 layered-window platform.
func NewPlatform() Platform { return nativePlatform{} }

func (nativePlatform) ScreenBounds() (screen.Rect, error) {
	return screen.PrimaryBounds()
}

func (nativePlatform) CreateWindow(opts WindowOptions) (Window, error) {
	registerOnce.Do(registerClass)
	if registerErr != nil {
		return nil, registerErr
	}

	exStyle := uint32(win.WS_EX_LAYERED | win.WS_EX_TOOLWINDOW)
	if opts.Topmost {
		exStyle |= win.WS_EX_TOPMOST
	}
	if opts.NoActivate {
		exStyle |= win.WS_EX_NOACTIVATE
	}
	if opts.ClickThrough {
		exStyle |= win.WS_EX_TRANSPARENT
	}
	style := uint32(win.WS_POPUP)
	if !opts.Borderless {
		style |= win.WS_CAPTION | win.WS_SYSMENU
	}

	b := opts.Bounds
	hwnd := win.CreateWindowEx(
		exStyle,
		syscall.StringToUTF16Ptr(overlayClassName),
		syscall.StringToUTF16Ptr(opts.Title),
		style,
		int32(b.X), int32(b.Y), int32(b.Width), int32(b.Height),
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if hwnd == 0 {
		return nil, fmt.Errorf("CreateWindowEx: %w", windows.GetLastError())
	}
	log.Printf("OVERLAY: window created, hwnd: %v, bounds: %s", hwnd, b)

	w := &layeredWindow{hwnd: hwnd, opts: opts, bounds: b}
	if opts.Crosshair {
		w.cursor = win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_CROSS))
	} else {
		w.cursor = win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_ARROW))
	}
	liveWindows[hwnd] = w
	return w, nil
}

func registerClass() {
	wc := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		LpfnWndProc:   syscall.NewCallback(overlayWndProc),
		HInstance:     win.GetModuleHandle(nil),
		LpszClassName: syscall.StringToUTF16Ptr(overlayClassName),
	}
	if atom := win.RegisterClassEx(&wc); atom == 0 {
		registerErr = fmt.Errorf("RegisterClassEx: %w", windows.GetLastError())
		return
	}
	log.Printf("OVERLAY: window class registered")
}

// layeredWindow is a WS_EX_LAYERED popup updated with UpdateLayeredWindow.
// Its backing store is a top-down 32-bit DIB selected into a memory DC.
type layeredWindow struct {
	hwnd    win.HWND
	opts    WindowOptions
	bounds  screen.Rect
	cursor  win.HCURSOR
	handler Handler

	memDC  win.HDC
	bitmap win.HBITMAP
	oldObj win.HGDIOBJ
	bits   []byte
	width  int
	height int

	shown        bool
	lastTick     time.Time
	tracking     bool
	polledInside bool
	polledCursor image.Point
	keyWasDown   map[int32]bool
	highSurr     rune
}

func (w *layeredWindow) Resize(width, height int) error {
	screenDC := win.GetDC(0)
	defer win.ReleaseDC(0, screenDC)

	memDC := win.CreateCompatibleDC(screenDC)
	if memDC == 0 {
		return errors.New("CreateCompatibleDC failed")
	}
	header := win.BITMAPINFOHEADER{
		BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
		BiWidth:       int32(width),
		BiHeight:      -int32(height),
		BiPlanes:      1,
		BiBitCount:    32,
		BiCompression: win.BI_RGB,
	}
	var bits unsafe.Pointer
	bitmap := win.CreateDIBSection(memDC, &header, win.DIB_RGB_COLORS, &bits, 0, 0)
	if bitmap == 0 || bits == nil {
		win.DeleteDC(memDC)
		return fmt.Errorf("CreateDIBSection %dx%d failed", width, height)
	}

	w.release()
	w.memDC = memDC
	w.bitmap = bitmap
	w.oldObj = win.SelectObject(memDC, win.HGDIOBJ(bitmap))
	w.bits = unsafe.Slice((*byte)(bits), width*height*4)
	w.width, w.height = width, height
	return nil
}

func (w *layeredWindow) Present(frame *image.RGBA, alpha float64) error {
	if w.memDC == 0 {
		return errors.New("present before resize")
	}
	if r, _, _ := procIsIconic.Call(uintptr(w.hwnd)); r != 0 {
		return fmt.Errorf("window minimized: %w", surface.ErrTransient)
	}

	// image.RGBA is premultiplied, which is what AC_SRC_ALPHA expects; only
	// the channel order differs.
	b := frame.Bounds()
	for y := 0; y < min(b.Dy(), w.height); y++ {
		src := frame.Pix[y*frame.Stride:]
		dst := w.bits[y*w.width*4:]
		for x := 0; x < min(b.Dx(), w.width); x++ {
			i := x * 4
			dst[i+0] = src[i+2]
			dst[i+1] = src[i+1]
			dst[i+2] = src[i+0]
			dst[i+3] = src[i+3]
		}
	}

	dstPos := win.POINT{X: int32(w.bounds.X), Y: int32(w.bounds.Y)}
	srcPos := win.POINT{}
	sz := size{CX: int32(w.width), CY: int32(w.height)}
	blend := blendFunction{
		BlendOp:             acSrcOver,
		SourceConstantAlpha: byte(math.Round(alpha * 255)),
		AlphaFormat:         acSrcAlpha,
	}
	screenDC := win.GetDC(0)
	defer win.ReleaseDC(0, screenDC)

	r, _, callErr := procUpdateLayeredWindow.Call(
		uintptr(w.hwnd),
		uintptr(screenDC),
		uintptr(unsafe.Pointer(&dstPos)),
		uintptr(unsafe.Pointer(&sz)),
		uintptr(w.memDC),
		uintptr(unsafe.Pointer(&srcPos)),
		0,
		uintptr(unsafe.Pointer(&blend)),
		ulwAlpha,
	)
	if r == 0 {
		if !win.IsWindow(w.hwnd) {
			return fmt.Errorf("UpdateLayeredWindow: window gone: %v", callErr)
		}
		return fmt.Errorf("UpdateLayeredWindow: %v: %w", callErr, surface.ErrTransient)
	}

	if !w.shown {
		w.show()
	}
	return nil
}

// show makes the window visible once it has content, so it never flashes empty.
func (w *layeredWindow) show() {
	w.shown = true
	if w.opts.NoActivate {
		win.ShowWindow(w.hwnd, win.SW_SHOWNOACTIVATE)
		return
	}
	win.ShowWindow(w.hwnd, win.SW_SHOW)
	// Windows may refuse focus to a process launched from a global hotkey.
	// Escape is polled in that case and a click activates the window.
	if !win.SetForegroundWindow(w.hwnd) {
		log.Printf("OVERLAY: SetForegroundWindow refused, click the overlay to type")
	}
	win.SetFocus(w.hwnd)
}

func (w *layeredWindow) SetBounds(r screen.Rect) error {
	after := win.HWND(0)
	if w.opts.Topmost {
		after = win.HWND_TOPMOST
	}
	if !win.SetWindowPos(w.hwnd, after, int32(r.X), int32(r.Y), int32(r.Width), int32(r.Height), win.SWP_NOACTIVATE) {
		return fmt.Errorf("SetWindowPos: %w", windows.GetLastError())
	}
	w.bounds = r
	return nil
}

func (w *layeredWindow) Run(ctx context.Context, h Handler) error {
	w.handler = h
	w.lastTick = time.Now()
	w.keyWasDown = map[int32]bool{}
	// Keys held while the overlay opens (the launch hotkey) must not count.
	for _, vk := range w.polledKeys() {
		w.keyWasDown[vk], _ = asyncKeyState(vk)
	}
	defer func() { w.handler = nil }()

	if timerID := win.SetTimer(w.hwnd, frameTimerID, frameIntervalMs, 0); timerID == 0 {
		return fmt.Errorf("SetTimer: %w", windows.GetLastError())
	}
	defer win.KillTimer(w.hwnd, frameTimerID)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			win.PostMessage(w.hwnd, win.WM_CLOSE, 0, 0)
		case <-stop:
		}
	}()

	// First frame without waiting for the timer.
	w.tick()

	var msg win.MSG
	for !h.Done() {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 {
			log.Printf("OVERLAY: WM_QUIT received")
			h.Handle(Close())
			win.PostQuitMessage(int32(msg.WParam))
			return nil
		}
		if ret == -1 {
			return fmt.Errorf("GetMessage: %w", windows.GetLastError())
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
	return nil
}

func (w *layeredWindow) Destroy() {
	if w.hwnd == 0 {
		return
	}
	delete(liveWindows, w.hwnd)
	win.DestroyWindow(w.hwnd)
	w.hwnd = 0
	w.release()
}

func (w *layeredWindow) release() {
	if w.memDC != 0 {
		win.SelectObject(w.memDC, w.oldObj)
		win.DeleteDC(w.memDC)
		w.memDC = 0
	}
	if w.bitmap != 0 {
		win.DeleteObject(win.HGDIOBJ(w.bitmap))
		w.bitmap = 0
	}
	w.bits = nil
}

func (w *layeredWindow) emit(ev Event) {
	if w.handler != nil && !w.handler.Done() {
		w.handler.Handle(ev)
	}
}

func (w *layeredWindow) tick() {
	now := time.Now()
	elapsed := now.Sub(w.lastTick)
	w.lastTick = now

	if w.opts.PollKeys || w.opts.PollEscape {
		w.pollKeys()
	}
	if w.opts.PollCursor {
		w.pollCursor()
	}
	w.emit(Tick(elapsed))
}

func (w *layeredWindow) polledKeys() []int32 {
	switch {
	case w.opts.PollKeys:
		return []int32{win.VK_ESCAPE, win.VK_RETURN}
	case w.opts.PollEscape:
		return []int32{win.VK_ESCAPE}
	}
	return nil
}

// pollKeys reports key presses to windows that do not have keyboard focus.
func (w *layeredWindow) pollKeys() {
	// A focused window already gets WM_KEYDOWN.
	focused := !w.opts.PollKeys && win.GetForegroundWindow() == w.hwnd
	for _, vk := range w.polledKeys() {
		down, pressed := asyncKeyState(vk)
		if !focused && !w.keyWasDown[vk] && (down || pressed) {
			log.Printf("OVERLAY: key 0x%x detected via async polling", vk)
			w.emit(KeyPress(virtualKey(vk), isCtrlDown()))
		}
		w.keyWasDown[vk] = down
	}
}

// pollCursor derives presence and movement for click-through windows.
func (w *layeredWindow) pollCursor() {
	var pt win.POINT
	if !win.GetCursorPos(&pt) {
		return
	}
	inside := w.bounds.Contains(int(pt.X), int(pt.Y))
	client := image.Pt(int(pt.X)-w.bounds.X, int(pt.Y)-w.bounds.Y)
	switch {
	case inside && !w.polledInside:
		w.polledInside = true
		w.emit(MouseEnter())
		w.emit(MouseMove(client.X, client.Y))
	case inside && client != w.polledCursor:
		w.emit(MouseMove(client.X, client.Y))
	case !inside && w.polledInside:
		w.polledInside = false
		w.emit(MouseLeave())
	}
	w.polledCursor = client
}

func overlayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	w := liveWindows[hwnd]
	if w == nil {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	switch msg {
	case win.WM_TIMER:
		if wParam == frameTimerID {
			w.tick()
		}
		return 0

	case win.WM_MOUSEMOVE:
		if !w.tracking {
			tme := win.TRACKMOUSEEVENT{
				CbSize:    uint32(unsafe.Sizeof(win.TRACKMOUSEEVENT{})),
				DwFlags:   win.TME_LEAVE,
				HwndTrack: hwnd,
			}
			w.tracking = win.TrackMouseEvent(&tme)
			w.emit(MouseEnter())
		}
		x, y := pointFromLParam(lParam)
		w.emit(MouseMove(x, y))
		return 0

	case win.WM_MOUSELEAVE:
		w.tracking = false
		w.emit(MouseLeave())
		return 0

	case win.WM_LBUTTONDOWN:
		win.SetCapture(hwnd)
		x, y := pointFromLParam(lParam)
		w.emit(MouseDown(x, y))
		return 0

	case win.WM_LBUTTONUP:
		win.ReleaseCapture()
		x, y := pointFromLParam(lParam)
		w.emit(MouseUp(x, y))
		return 0

	case win.WM_KEYDOWN:
		if k := virtualKey(int32(wParam)); k != KeyNone {
			w.emit(KeyPress(k, isCtrlDown()))
		}
		return 0

	case win.WM_CHAR:
		r := rune(wParam)
		if utf16.IsSurrogate(r) {
			if w.highSurr == 0 {
				w.highSurr = r
				return 0
			}
			r = utf16.DecodeRune(w.highSurr, r)
			w.highSurr = 0
		}
		// Enter, Backspace and Ctrl combinations arrive as control
		// characters and are already handled as WM_KEYDOWN.
		if r >= 0x20 || r == '\t' {
			w.emit(Char(r))
		}
		return 0

	case win.WM_SETCURSOR:
		if w.cursor != 0 {
			win.SetCursor(w.cursor)
			return 1
		}

	case win.WM_MOUSEACTIVATE:
		if w.opts.NoActivate {
			return maNoActivate
		}

	case win.WM_NCHITTEST:
		if !w.opts.ClickThrough {
			return uintptr(win.HTCLIENT)
		}

	case win.WM_CLOSE:
		w.emit(Close())
		return 0

	case win.WM_DESTROY:
		// No PostQuitMessage: the message queue belongs to the mode
		// controller and outlives this window.
		return 0
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

func pointFromLParam(lParam uintptr) (int, int) {
	return int(int16(win.LOWORD(uint32(lParam)))), int(int16(win.HIWORD(uint32(lParam))))
}

func virtualKey(vk int32) Key {
	switch vk {
	case win.VK_ESCAPE:
		return KeyEscape
	case win.VK_RETURN:
		return KeyEnter
	case win.VK_BACK:
		return KeyBackspace
	case win.VK_UP:
		return KeyUp
	case win.VK_DOWN:
		return KeyDown
	case win.VK_LEFT:
		return KeyLeft
	case win.VK_RIGHT:
		return KeyRight
	default:
		return KeyNone
	}
}

func isCtrlDown() bool {
	return win.GetKeyState(win.VK_CONTROL) < 0
}

func asyncKeyState(vk int32) (bool, bool) {
	state, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	s := uint16(state)
	return s&asyncKeyDownMask != 0, s&asyncKeyPressedBit != 0
}
