package plugin

// Pipeline groups transform plugins by input extension, in registration
// order (script-derived plugins before declared ones). The first
// applicable plugin wins when a file is transformed.
type Pipeline map[string][]*Plugin

// NewPipeline indexes the plugin list by input extension.
func NewPipeline(plugins []*Plugin) Pipeline {
	p := make(Pipeline)
	for _, candidate := range plugins {
		for _, ext := range candidate.Input {
			p[ext] = append(p[ext], candidate)
		}
	}
	return p
}

// First returns the first registered plugin handling the extension.
func (p Pipeline) First(ext string) (*Plugin, bool) {
	candidates := p[ext]
	if len(candidates) == 0 {
		return nil, false
	}
	return candidates[0], true
}
