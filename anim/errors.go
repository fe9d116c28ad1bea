package anim

import "errors"

var (
	ErrNotFound             = errors.New("anim: not found")
	ErrInvalidKeyframeOrder = errors.New("anim: invalid keyframe order")
	ErrDuplicateAnimation   = errors.New("anim: duplicate animation")
	ErrInvalidDuration      = errors.New("anim: duration shorter than keyframes")
	ErrInvalidTrack         = errors.New("anim: invalid track index")
)
