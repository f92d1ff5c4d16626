package record

import "gopkg.in/yaml.v3"

// MarshalYAML renders the record as a mapping node so the output preserves
// schema order. yaml.Marshal on a plain map would sort keys.
func (r *Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, item := range r.Items() {
		var key, value yaml.Node
		if err := key.Encode(item.Key); err != nil {
			return nil, err
		}
		if err := value.Encode(item.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &key, &value)
	}
	return node, nil
}

// YAML returns the ordered document representation of the record, suitable
// for posting to the server. Every schema key appears exactly once, in
// schema order.
func (r *Record) YAML() (string, error) {
	out, err := yaml.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
