package meshpy

import "errors"

var (
	// ErrInvalidDiscretization reports a viewsphere with fewer than one
	// sample along the radius, azimuth or elevation dimension.
	ErrInvalidDiscretization = errors.New("viewsphere discretization must have at least one sample per dimension")
	// ErrInvalidIntrinsics reports a camera intrinsics value that does not
	// satisfy the Intrinsics capability contract.
	ErrInvalidIntrinsics = errors.New("invalid camera intrinsics")
	// ErrUnsupportedRenderMode reports a render mode the wrapped-image
	// pipeline cannot produce.
	ErrUnsupportedRenderMode = errors.New("unsupported render mode")
)
