package main

import (
	"chunkbake/internal/input"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func setupInputHandlers(window *glfw.Window, l *viewLoop, im *input.Manager) {
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if l.firstMouse {
			l.lastX, l.lastY = xpos, ypos
			l.firstMouse = false
			return
		}
		dx, dy := xpos-l.lastX, l.lastY-ypos
		l.lastX, l.lastY = xpos, ypos
		l.renderer.GetCamera().Turn(float32(dx)*mouseSensitivity, float32(dy)*mouseSensitivity)
	})

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		im.HandleMouseButtonEvent(button, action)
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		im.HandleKeyEvent(key, action)
	})

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		l.renderer.UpdateViewport(width, height)
	})
}
