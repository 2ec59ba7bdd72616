package cli

import (
	"github.com/spf13/pflag"
	"github.com/tzneal/egbt22trans"
)

// -- egbt22trans.ReferenceSystem Value
type systemValue struct {
	value *egbt22trans.ReferenceSystem
}

// NewSystemValue creates a pflag Value for a reference system name.
func NewSystemValue(p *egbt22trans.ReferenceSystem) pflag.Value {
	return &systemValue{value: p}
}

func (s *systemValue) Set(val string) error {
	rs, err := egbt22trans.ParseReferenceSystem(val)
	if err != nil {
		return err
	}
	*s.value = rs
	return nil
}

func (s *systemValue) Type() string { return "system" }

func (s *systemValue) String() string {
	if !s.value.Valid() {
		return ""
	}
	return s.value.String()
}

// -- egbt22trans.VerticalReference Value
type verticalValue struct {
	value *egbt22trans.VerticalReference
}

// NewVerticalValue creates a pflag Value for a vertical reference name.
func NewVerticalValue(def egbt22trans.VerticalReference, p *egbt22trans.VerticalReference) pflag.Value {
	*p = def
	return &verticalValue{value: p}
}

func (v *verticalValue) Set(val string) error {
	vr, err := egbt22trans.ParseVerticalReference(val)
	if err != nil {
		return err
	}
	*v.value = vr
	return nil
}

func (v *verticalValue) Type() string { return "vertical" }

func (v *verticalValue) String() string { return v.value.String() }

// -- egbt22trans.Datum Value
type datumValue struct {
	value *egbt22trans.Datum
}

// NewDatumValue creates a pflag Value for a datum name.
func NewDatumValue(def egbt22trans.Datum, p *egbt22trans.Datum) pflag.Value {
	*p = def
	return &datumValue{value: p}
}

func (d *datumValue) Set(val string) error {
	datum, err := egbt22trans.ParseDatum(val)
	if err != nil {
		return err
	}
	*d.value = datum
	return nil
}

func (d *datumValue) Type() string { return "datum" }

func (d *datumValue) String() string { return d.value.String() }
