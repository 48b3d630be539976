//go:build ffms2

// Package ffms provides CGO bindings to FFMS2 for frame-exact random access.
package ffms

/*
#cgo pkg-config: ffms2
#include <ffms.h>
#include <stdlib.h>
#include <string.h>

#define ERR_BUF_SIZE 1024

static FFMS_ErrorInfo* create_error_info() {
	FFMS_ErrorInfo* err = (FFMS_ErrorInfo*)malloc(sizeof(FFMS_ErrorInfo));
	err->Buffer = (char*)malloc(ERR_BUF_SIZE);
	err->BufferSize = ERR_BUF_SIZE;
	err->Buffer[0] = '\0';
	return err;
}

static void free_error_info(FFMS_ErrorInfo* err) {
	if (err) {
		free(err->Buffer);
		free(err);
	}
}

static const char* get_error_message(FFMS_ErrorInfo* err) {
	return err->Buffer;
}

// set_rgb24 asks FFMS2 to convert every frame to packed RGB at its native size.
static int set_rgb24(FFMS_VideoSource* src, int width, int height, FFMS_ErrorInfo* err) {
	int fmts[2];
	fmts[0] = FFMS_GetPixFmt("rgb24");
	fmts[1] = -1;
	return FFMS_SetOutputFormatV2(src, fmts, width, height, FFMS_RESIZER_BICUBIC, err);
}
*/
import "C"

import (
	"fmt"
	"image"
	"sync"
	"unsafe"
)

var initOnce sync.Once

// Init initializes the FFMS2 library. Safe to call multiple times.
func Init() {
	initOnce.Do(func() {
		C.FFMS_Init(0, 0)
	})
}

// Video is an indexed video track opened for RGB frame access.
type Video struct {
	idx    *C.FFMS_Index
	src    *C.FFMS_VideoSource
	Width  int
	Height int
	FPSNum uint32
	FPSDen uint32
	Frames int
}

func errorFrom(errInfo *C.FFMS_ErrorInfo, what string) error {
	return fmt.Errorf("%s: %s", what, C.GoString(C.get_error_message(errInfo)))
}

// Open indexes path and opens its first video track.
func Open(path string) (*Video, error) {
	Init()

	errInfo := C.create_error_info()
	defer C.free_error_info(errInfo)

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	indexer := C.FFMS_CreateIndexer(cPath, errInfo)
	if indexer == nil {
		return nil, errorFrom(errInfo, "failed to create indexer")
	}

	idx := C.FFMS_DoIndexing2(indexer, C.int(0), errInfo)
	if idx == nil {
		return nil, errorFrom(errInfo, "failed to index")
	}

	trackNum := C.FFMS_GetFirstTrackOfType(idx, C.FFMS_TYPE_VIDEO, errInfo)
	if trackNum < 0 {
		C.FFMS_DestroyIndex(idx)
		return nil, errorFrom(errInfo, "no video track found")
	}

	src := C.FFMS_CreateVideoSource(cPath, C.int(trackNum), idx, 1, C.FFMS_SEEK_NORMAL, errInfo)
	if src == nil {
		C.FFMS_DestroyIndex(idx)
		return nil, errorFrom(errInfo, "failed to create video source")
	}

	v := &Video{idx: idx, src: src}

	props := C.FFMS_GetVideoProperties(src)
	if props == nil {
		v.Close()
		return nil, fmt.Errorf("failed to get video properties")
	}
	v.FPSNum = uint32(props.FPSNumerator)
	v.FPSDen = uint32(props.FPSDenominator)
	v.Frames = int(props.NumFrames)

	frame := C.FFMS_GetFrame(src, 0, errInfo)
	if frame == nil {
		v.Close()
		return nil, errorFrom(errInfo, "failed to get first frame")
	}
	v.Width = int(frame.EncodedWidth)
	v.Height = int(frame.EncodedHeight)

	if C.set_rgb24(src, C.int(v.Width), C.int(v.Height), errInfo) != 0 {
		v.Close()
		return nil, errorFrom(errInfo, "failed to set output format")
	}

	return v, nil
}

// Frame decodes frameIdx into a new RGBA image.
func (v *Video) Frame(frameIdx int) (*image.NRGBA, error) {
	if v.src == nil {
		return nil, fmt.Errorf("nil video source")
	}

	errInfo := C.create_error_info()
	defer C.free_error_info(errInfo)

	frame := C.FFMS_GetFrame(v.src, C.int(frameIdx), errInfo)
	if frame == nil {
		return nil, errorFrom(errInfo, fmt.Sprintf("failed to get frame %d", frameIdx))
	}

	w, h := int(frame.ScaledWidth), int(frame.ScaledHeight)
	if w <= 0 || h <= 0 {
		w, h = v.Width, v.Height
	}
	stride := int(frame.Linesize[0])
	data := unsafe.Slice((*byte)(unsafe.Pointer(frame.Data[0])), stride*h)

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := data[y*stride : y*stride+w*3]
		out := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x, j := 0, 0; x < len(row); x, j = x+3, j+4 {
			out[j] = row[x]
			out[j+1] = row[x+1]
			out[j+2] = row[x+2]
			out[j+3] = 0xff
		}
	}
	return img, nil
}

// Close releases the source and index.
func (v *Video) Close() {
	if v.src != nil {
		C.FFMS_DestroyVideoSource(v.src)
		v.src = nil
	}
	if v.idx != nil {
		C.FFMS_DestroyIndex(v.idx)
		v.idx = nil
	}
}
