package service

import (
	"os"
	"testing"

	"github.com/opskitchen/shiftboard/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
