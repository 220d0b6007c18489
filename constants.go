package main

type Mode int

const (
	ModeNormal Mode = iota
	ModeHelp
)

const (
	minSceneWidth  = 8
	minSceneHeight = 3
	panStep        = 4 // screen cells per arrow key press
)

// pressTarget is what a mouse press landed on.
type pressTarget int

const (
	pressBackground pressTarget = iota
	pressSceneHeader
	pressSceneBody
	pressConnectionEnd
	pressConnectionStart
)
