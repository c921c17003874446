package usecase

import (
	"github.com/sirupsen/logrus"

	"github.com/forPelevin/hlshorts/internal/logging"
	"github.com/forPelevin/hlshorts/internal/ports"
)

type Deps struct {
	Video ports.VideoTool
	Log   logrus.FieldLogger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	return Usecase{d: d}
}
