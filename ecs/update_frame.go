package ecs

type UpdateFrame struct {
	DeltaTime float64
	Commands  *Commands
	Entities  *EntityManager
}

func newUpdateFrame(dt float64, em *EntityManager) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Commands:  newCommands(),
		Entities:  em,
	}
}
