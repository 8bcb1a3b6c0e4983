package transform

import (
	"fmt"

	"go.uber.org/zap"

	"fragmerge/config"
)

// FromConfig builds enabled transformers in configuration order: web
// fragment merger first, then xml mergers as listed, then ordered text
// concatenation.
func FromConfig(conf *config.MergeConfig, rpt *config.Report, log *zap.Logger) ([]Transformer, error) {
	var list []Transformer

	if conf.WebFragment.Enable {
		t, err := NewWebFragment(&conf.WebFragment, rpt, log)
		if err != nil {
			return nil, fmt.Errorf("web fragment merger: %w", err)
		}
		list = append(list, t)
	}

	for i := range conf.XMLMerge {
		t, err := NewXMLMerge(&conf.XMLMerge[i], log)
		if err != nil {
			return nil, fmt.Errorf("xml merger #%d: %w", i+1, err)
		}
		list = append(list, t)
	}

	if len(conf.Ordered.Include) > 0 {
		t, err := NewOrdered(&conf.Ordered, log)
		if err != nil {
			return nil, fmt.Errorf("ordered merger: %w", err)
		}
		list = append(list, t)
	}
	return list, nil
}

// Select returns first transformer claiming the path, nil if there is none.
func Select(list []Transformer, path string) Transformer {
	for _, t := range list {
		if t.CanTransform(path) {
			return t
		}
	}
	return nil
}
