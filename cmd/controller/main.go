package main

import (
	"log"

	"github.com/luscis/vtn/pkg/config"
	"github.com/luscis/vtn/pkg/controller"
	"github.com/luscis/vtn/pkg/libol"
)

func main() {
	log.SetFlags(0)
	c := config.NewController()
	libol.SetLogger(c.Log.File, c.Log.Verbose)
	libol.Debug("main %v", c)
	v := controller.NewController(c)
	libol.PreNotify()
	v.Initialize()
	v.Start()
	libol.SdNotify()
	libol.Wait()
	libol.SdStopping()
	v.Stop()
}
