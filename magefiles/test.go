//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs the unit tests. They use fake devices and need neither a GPU nor a window.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./engine/core/...", "./engine/containers/...", "./engine/math/...", "./engine/renderer/swapchain/...", "./engine/renderer", "./engine"), withStream())
	return err
}

// Runs the presentation chain tests verbosely.
func (Test) Swapchain() error {
	_, err := executeCmd("go", withArgs("test", "-v", "./swapchain/..."), withDir("engine/renderer"), withStream())
	return err
}
