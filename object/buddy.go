package object

import "github.com/go-gl/mathgl/mgl32"

// SyncPlan copies a 3D model's placement onto its floor-plan buddy:
// x stays x, z becomes -y, yaw about Y becomes rotation about Z and the
// x/z scale becomes the plan scale.
func SyncPlan(src *Model3D, dst *Model2D) {
	dst.Position = mgl32.Vec2{src.Position[0], -src.Position[2]}
	dst.Rotation = src.Yaw()
	dst.Scale = mgl32.Vec2{src.Scale[0], src.Scale[2]}
}

// SyncSpace is the inverse of SyncPlan. Height, pitch, roll and vertical
// scale of the 3D model are left alone.
func SyncSpace(src *Model2D, dst *Model3D) {
	dst.Position = mgl32.Vec3{src.Position[0], dst.Position[1], -src.Position[1]}
	dst.SetYaw(src.Rotation)
	dst.Scale = mgl32.Vec3{src.Scale[0], dst.Scale[1], src.Scale[1]}
}
