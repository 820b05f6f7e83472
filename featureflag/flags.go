package featureflag

type Flag string

const (
	FlagDisableExactTest     Flag = "DISABLE_EXACT_TEST"
	FlagDisableDirtyTracking Flag = "DISABLE_DIRTY_TRACKING"
	FlagDisableCulling       Flag = "DISABLE_CULLING"
	FlagDisableFrameStream   Flag = "DISABLE_FRAME_STREAM"
)
