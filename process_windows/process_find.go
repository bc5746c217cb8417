//go:build windows

package process_windows

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"proctree/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/aarondl/opt/null"
	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

const (
	wmiNamespace    = `root\cimv2`
	wmiProcessQuery = "SELECT * FROM Win32_Process"

	// CoInitializeEx returns S_FALSE when COM is already initialized on the thread
	sFalse = 0x00000001
)

// WMIDetailedSource implements process.DetailedProcessSource with a
// Win32_Process query. Properties are read by name, so any Win32_Process
// property can be requested as an attribute.
type WMIDetailedSource struct {
	log *logger.Logger
}

// NewWMIDetailedSource creates a new WMIDetailedSource
func NewWMIDetailedSource() *WMIDetailedSource {
	return &WMIDetailedSource{
		log: logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "wmi-process")),
	}
}

// Query runs the Win32_Process query and returns one record per row
func (s *WMIDetailedSource) Query(ctx context.Context, attributes []string) ([]process.DetailedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// COM state is per thread
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || (oleErr.Code() != ole.S_OK && oleErr.Code() != sFalse) {
			return nil, fmt.Errorf("%w: initialize COM: %v", process.ErrSourceUnavailable, err)
		}
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("WbemScripting.SWbemLocator")
	if err != nil {
		return nil, fmt.Errorf("%w: create WMI locator: %v", process.ErrSourceUnavailable, err)
	}
	defer unknown.Release()

	locator, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return nil, fmt.Errorf("%w: query WMI locator: %v", process.ErrSourceUnavailable, err)
	}
	defer locator.Release()

	serviceRaw, err := oleutil.CallMethod(locator, "ConnectServer", nil, wmiNamespace)
	if err != nil {
		return nil, fmt.Errorf("%w: connect %s: %v", process.ErrSourceUnavailable, wmiNamespace, err)
	}
	service := serviceRaw.ToIDispatch()
	defer serviceRaw.Clear()

	resultRaw, err := oleutil.CallMethod(service, "ExecQuery", wmiProcessQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", process.ErrSourceUnavailable, wmiProcessQuery, err)
	}
	result := resultRaw.ToIDispatch()
	defer resultRaw.Clear()

	countVar, err := oleutil.GetProperty(result, "Count")
	if err != nil {
		return nil, fmt.Errorf("%w: count rows: %v", process.ErrSourceUnavailable, err)
	}
	count, _ := variantInt(countVar.Value())
	countVar.Clear()

	records := make([]process.DetailedRecord, 0, count)
	skipped := 0

	for i := int64(0); i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := readRow(result, i, attributes)
		if err != nil {
			// Process may have terminated while we were reading
			skipped++
			continue
		}
		records = append(records, rec)
	}

	if skipped > 0 {
		s.log.Debugln(fmt.Sprintf("skipped %d rows that could not be read", skipped))
	}

	return records, nil
}

func readRow(result *ole.IDispatch, index int64, attributes []string) (process.DetailedRecord, error) {
	itemRaw, err := oleutil.CallMethod(result, "ItemIndex", index)
	if err != nil {
		return process.DetailedRecord{}, err
	}
	item := itemRaw.ToIDispatch()
	defer itemRaw.Clear()

	pid, ok := property(item, process.AttrProcessID).Get()
	if !ok {
		return process.DetailedRecord{}, fmt.Errorf("row %d has no %s", index, process.AttrProcessID)
	}
	ppid, _ := property(item, process.AttrParentProcessID).Get()

	rec := process.DetailedRecord{}
	if n, ok := variantInt(pid); ok {
		rec.PID = process.ProcessID(n)
	}
	if n, ok := variantInt(ppid); ok {
		rec.PPID = process.ProcessID(n)
	}

	if len(attributes) > 0 {
		rec.Attributes = make(map[string]null.Val[string], len(attributes))
		for _, name := range attributes {
			rec.Attributes[name] = property(item, name)
		}
	}

	return rec, nil
}

// property reads one property of a row, null when it is missing or empty
func property(item *ole.IDispatch, name string) null.Val[string] {
	v, err := oleutil.GetProperty(item, name)
	if err != nil {
		return null.Val[string]{}
	}
	defer v.Clear()
	return variantString(v.Value())
}
