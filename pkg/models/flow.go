package models

import (
	"errors"
	"fmt"
	"strings"
)

// ModuleImporter resolves a declared tool/provider module identifier to
// its runtime capability. The core never performs imports itself; it is
// handed an importer populated by an explicit registration phase.
type ModuleImporter interface {
	ImportModule(name string) error
}

// ToolLoader resolves tool declarations for nodes whose tool is not
// embedded in the flow's own catalog.
type ToolLoader interface {
	LoadToolForNode(node *Node) (*Tool, bool)
}

// Flow is the aggregate workflow graph definition: an ordered node
// sequence, named input/output definitions, an embedded tool catalog
// and an optional per-node variant table. The node order is the
// declaration order and carries no topological meaning.
type Flow struct {
	ID           string                           `json:"id"`
	Name         string                           `json:"name" validate:"required"`
	Nodes        []*Node                          `json:"nodes"`
	Inputs       map[string]*FlowInputDefinition  `json:"inputs"`
	Outputs      map[string]*FlowOutputDefinition `json:"outputs"`
	Tools        []*Tool                          `json:"tools"`
	NodeVariants map[string]*NodeVariants         `json:"node_variants,omitempty"`

	toolLoader ToolLoader
}

// DefaultFlowID is the fallback id for definitions carrying neither an
// id nor a name.
const DefaultFlowID = "default_flow_id"

// DeserializeFlow constructs a flow from a generic tree. When importer
// is non-nil, every module declared by a tool or node is imported
// before the flow is considered usable; failures are wrapped into a
// single aggregate error and abort construction.
func DeserializeFlow(data map[string]any, importer ModuleImporter) (*Flow, error) {
	tools := make([]*Tool, 0, len(sliceField(data, "tools")))

	for _, raw := range sliceField(data, "tools") {
		toolData, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("tool declaration is not a mapping")
		}

		tool, err := DeserializeTool(toolData)
		if err != nil {
			return nil, err
		}

		tools = append(tools, tool)
	}

	nodes := make([]*Node, 0, len(sliceField(data, "nodes")))

	for _, raw := range sliceField(data, "nodes") {
		nodeData, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("node declaration is not a mapping")
		}

		node, err := DeserializeNode(nodeData)
		if err != nil {
			return nil, err
		}

		nodes = append(nodes, node)
	}

	if err := importRequisites(importer, tools, nodes); err != nil {
		return nil, err
	}

	inputs := map[string]*FlowInputDefinition{}

	for name, raw := range mapField(data, "inputs") {
		inputData, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("input %q is not a mapping", name)
		}

		input, err := DeserializeFlowInputDefinition(inputData)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", name, err)
		}

		inputs[name] = input
	}

	outputs := map[string]*FlowOutputDefinition{}

	for name, raw := range mapField(data, "outputs") {
		outputData, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("output %q is not a mapping", name)
		}

		output, err := DeserializeFlowOutputDefinition(outputData)
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", name, err)
		}

		outputs[name] = output
	}

	nodeVariants := map[string]*NodeVariants{}

	for name, raw := range mapField(data, "node_variants") {
		variantData, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("node_variants entry %q is not a mapping", name)
		}

		variants, err := DeserializeNodeVariants(variantData)
		if err != nil {
			return nil, fmt.Errorf("node_variants entry %q: %w", name, err)
		}

		nodeVariants[name] = variants
	}

	id := stringField(data, "id")
	name := stringField(data, "name")

	if id == "" {
		// Older definitions carry no id.
		id = name
		if id == "" {
			id = DefaultFlowID
		}
	}

	if name == "" {
		name = "default_flow"
	}

	return &Flow{
		ID:           id,
		Name:         name,
		Nodes:        nodes,
		Inputs:       inputs,
		Outputs:      outputs,
		Tools:        tools,
		NodeVariants: nodeVariants,
	}, nil
}

// importRequisites imports tool and node provider modules so that the
// declared types exist before the flow is handed to an engine.
func importRequisites(importer ModuleImporter, tools []*Tool, nodes []*Node) error {
	if importer == nil {
		return nil
	}

	var errs []error

	for _, tool := range tools {
		if tool.Module == "" {
			continue
		}

		if err := importer.ImportModule(tool.Module); err != nil {
			errs = append(errs, fmt.Errorf("import tool %q module %q: %w", tool.Name, tool.Module, err))
		}
	}

	for _, node := range nodes {
		if node.Module == "" {
			continue
		}

		if err := importer.ImportModule(node.Module); err != nil {
			errs = append(errs, fmt.Errorf("import node %q provider module %q: %w", node.Name, node.Module, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrFailedToImportModule, errors.Join(errs...))
	}

	return nil
}

// Serialize renders the flow as a generic tree.
func (f *Flow) Serialize() map[string]any {
	nodes := make([]any, 0, len(f.Nodes))
	for _, node := range f.Nodes {
		nodes = append(nodes, node.Serialize())
	}

	inputs := map[string]any{}
	for name, input := range f.Inputs {
		inputs[name] = input.Serialize()
	}

	outputs := map[string]any{}
	for name, output := range f.Outputs {
		outputs[name] = output.Serialize()
	}

	tools := make([]any, 0, len(f.Tools))
	for _, tool := range f.Tools {
		tools = append(tools, serializeTool(tool))
	}

	return map[string]any{
		"id":      f.ID,
		"name":    f.Name,
		"nodes":   nodes,
		"inputs":  inputs,
		"outputs": outputs,
		"tools":   tools,
	}
}

func serializeTool(tool *Tool) map[string]any {
	data := map[string]any{"name": tool.Name}

	if tool.Type != "" {
		data["type"] = string(tool.Type)
	}

	if tool.Module != "" {
		data["module"] = tool.Module
	}

	if tool.Description != "" {
		data["description"] = tool.Description
	}

	if len(tool.Inputs) > 0 {
		inputs := map[string]any{}

		for name, input := range tool.Inputs {
			inputData := map[string]any{"type": input.Type}
			if input.Default != nil {
				inputData["default"] = input.Default
			}

			if input.Description != "" {
				inputData["description"] = input.Description
			}

			inputs[name] = inputData
		}

		data["inputs"] = inputs
	}

	return data
}

// SetToolLoader wires the external tool-loading collaborator used as a
// fallback when a node's tool is absent from the embedded catalog.
func (f *Flow) SetToolLoader(loader ToolLoader) {
	f.toolLoader = loader
}

// GetNode returns the node with the given name, or nil if absent.
func (f *Flow) GetNode(nodeName string) *Node {
	for _, node := range f.Nodes {
		if node.Name == nodeName {
			return node
		}
	}

	return nil
}

// GetTool returns the tool with the given name from the embedded
// catalog, or nil if absent.
func (f *Flow) GetTool(toolName string) *Tool {
	for _, tool := range f.Tools {
		if tool.Name == toolName {
			return tool
		}
	}

	return nil
}

// HasAggregationNode returns whether the flow has an aggregation node.
func (f *Flow) HasAggregationNode() bool {
	for _, node := range f.Nodes {
		if node.Aggregation {
			return true
		}
	}

	return false
}

// IsReduceNode returns whether the named node exists and aggregates.
func (f *Flow) IsReduceNode(nodeName string) bool {
	node := f.GetNode(nodeName)

	return node != nil && node.Aggregation
}

// IsNormalNode returns whether the named node exists and does not aggregate.
func (f *Flow) IsNormalNode(nodeName string) bool {
	node := f.GetNode(nodeName)

	return node != nil && !node.Aggregation
}

// IsLLMNode returns whether a node uses an LLM tool.
func (f *Flow) IsLLMNode(node *Node) bool {
	return node.Type == ToolTypeLLM
}

// IsReferencedByFlowOutput returns whether some flow output references
// the node.
func (f *Flow) IsReferencedByFlowOutput(node *Node) bool {
	for _, output := range f.Outputs {
		if output.Reference.ValueType == InputValueTypeNodeReference && output.Reference.Value == node.Name {
			return true
		}
	}

	return false
}

// IsNodeReferencedBy returns whether node is referenced by an input of
// otherNode.
func (f *Flow) IsNodeReferencedBy(node, otherNode *Node) bool {
	for _, input := range otherNode.Inputs {
		if input.ValueType == InputValueTypeNodeReference && input.Value == node.Name {
			return true
		}
	}

	return false
}

// IsReferencedByOtherNode returns whether any node in the flow
// references the node.
func (f *Flow) IsReferencedByOtherNode(node *Node) bool {
	for _, flowNode := range f.Nodes {
		if f.IsNodeReferencedBy(node, flowNode) {
			return true
		}
	}

	return false
}

// IsChatFlow returns whether the flow declares a chat input.
func (f *Flow) IsChatFlow() bool {
	return f.GetChatInputName() != ""
}

// GetChatInputName returns the name of the chat input, or "".
func (f *Flow) GetChatInputName() string {
	for name, input := range f.Inputs {
		if input.IsChatInput {
			return name
		}
	}

	return ""
}

// GetChatOutputName returns the name of the chat output, or "".
func (f *Flow) GetChatOutputName() string {
	for name, output := range f.Outputs {
		if output.IsChatOutput {
			return name
		}
	}

	return ""
}

// ApplyDefaultNodeVariants substitutes every variant-bearing node with
// its default variant definition, in place.
func (f *Flow) ApplyDefaultNodeVariants() *Flow {
	nodes := make([]*Node, 0, len(f.Nodes))

	for _, node := range f.Nodes {
		if node.UseVariants {
			nodes = append(nodes, ApplyDefaultNodeVariant(node, f.NodeVariants))
		} else {
			nodes = append(nodes, node)
		}
	}

	f.Nodes = nodes

	return f
}

// ApplyDefaultNodeVariant resolves a variant-bearing node to its default
// variant definition. The variant fully replaces the node except for the
// name, so name-based lookups stay stable. When the node has no variants
// turned on, no table exists, no entry matches the node, or the entry
// has no default variant, the node is returned unchanged.
func ApplyDefaultNodeVariant(node *Node, nodeVariants map[string]*NodeVariants) *Node {
	if !node.UseVariants || len(nodeVariants) == 0 {
		return node
	}

	variants, ok := nodeVariants[node.Name]
	if !ok {
		return node
	}

	defaultVariant, ok := variants.Variants[variants.DefaultVariantID]
	if !ok || defaultVariant == nil || defaultVariant.Node == nil {
		return node
	}

	defaultVariant.Node.Name = node.Name

	return defaultVariant.Node
}

// effectiveNodes is the variant-normalized node view, recomputed on
// demand so the raw node list and variant table stay the source of truth.
func (f *Flow) effectiveNodes() []*Node {
	nodes := make([]*Node, 0, len(f.Nodes))

	for _, node := range f.Nodes {
		if node.UseVariants {
			nodes = append(nodes, ApplyDefaultNodeVariant(node, f.NodeVariants))
		} else {
			nodes = append(nodes, node)
		}
	}

	return nodes
}

// ApplyNodeOverrides applies "node.field" keyed overrides to the flow's
// nodes in place and returns the flow for chaining. A "connection"
// field overrides the node's connection slot when it has one; any other
// field replaces the named input with a literal assignment. Override
// targets are assumed valid, so a missing node is fatal.
func (f *Flow) ApplyNodeOverrides(overrides map[string]any) (*Flow, error) {
	for key, value := range overrides {
		parts := strings.SplitN(key, ".", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid node override key %q", key)
		}

		nodeName, inputName := parts[0], parts[1]

		node := f.GetNode(nodeName)
		if node == nil {
			return nil, fmt.Errorf("cannot find node %q in flow %q: %w", nodeName, f.Name, ErrNodeNotFound)
		}

		if node.Connection != "" && inputName == "connection" {
			node.Connection = fmt.Sprintf("%v", value)

			continue
		}

		if node.Inputs == nil {
			node.Inputs = map[string]InputAssignment{}
		}

		node.Inputs[inputName] = InputAssignment{Value: value, ValueType: InputValueTypeLiteral}
	}

	return f, nil
}

// ReplaceWithVariant replaces the first node matching the variant node's
// name and appends the variant's extra tool declarations to the catalog.
func (f *Flow) ReplaceWithVariant(variantNode *Node, variantTools []*Tool) {
	for index, node := range f.Nodes {
		if node.Name == variantNode.Name {
			f.Nodes[index] = variantNode

			break
		}
	}

	f.Tools = append(f.Tools, variantTools...)
}

// connectionNamesFromTool maps possible connection slots of a tool to
// the literal values the node binds them to. Node-reference-valued
// inputs are never connection names: a connection is resolved before
// execution, a node reference during it.
func connectionNamesFromTool(tool *Tool, node *Node) map[string]string {
	connectionNames := map[string]string{}

	for inputName, input := range tool.Inputs {
		if !input.IsConnectionSlot() {
			continue
		}

		assignment, ok := node.Inputs[inputName]
		if !ok || assignment.ValueType != InputValueTypeLiteral {
			continue
		}

		if name, ok := assignment.Value.(string); ok {
			connectionNames[inputName] = name
		}
	}

	return connectionNames
}

// GetConnectionNames returns the names of all connections the flow's
// effective nodes require. Nodes whose tool cannot be resolved
// contribute nothing rather than failing the aggregation.
func (f *Flow) GetConnectionNames() map[string]struct{} {
	connectionNames := map[string]struct{}{}

	for _, node := range f.effectiveNodes() {
		if node.Connection != "" {
			connectionNames[node.Connection] = struct{}{}

			continue
		}

		// Prompt and LLM nodes have no connection inputs.
		if node.Type == ToolTypePrompt || node.Type == ToolTypeLLM {
			continue
		}

		tool := f.resolveTool(node)
		if tool == nil {
			continue
		}

		for _, name := range connectionNamesFromTool(tool, node) {
			if name != "" {
				connectionNames[name] = struct{}{}
			}
		}
	}

	return connectionNames
}

// GetConnectionInputNamesForNode returns the connection slot input names
// of the named node's effective definition.
func (f *Flow) GetConnectionInputNamesForNode(nodeName string) []string {
	node := f.GetNode(nodeName)
	if node != nil && node.UseVariants {
		node = ApplyDefaultNodeVariant(node, f.NodeVariants)
	}

	if node == nil || node.Type == ToolTypePrompt || node.Type == ToolTypeLLM {
		return nil
	}

	tool := f.resolveTool(node)
	if tool == nil {
		return nil
	}

	inputNames := make([]string, 0, len(tool.Inputs))
	for inputName := range connectionNamesFromTool(tool, node) {
		inputNames = append(inputNames, inputName)
	}

	return inputNames
}

// GetToolForNode resolves the named node's tool declaration, failing
// when the node is absent or its tool cannot be resolved. Callers that
// tolerate unresolved tools use the query methods above instead.
func (f *Flow) GetToolForNode(nodeName string) (*Tool, error) {
	node := f.GetNode(nodeName)
	if node == nil {
		return nil, NewFlowError("GetToolForNode", f.Name, fmt.Errorf("node %q: %w", nodeName, ErrNodeNotFound))
	}

	tool := f.resolveTool(node)
	if tool == nil {
		return nil, NewNodeError("GetToolForNode", node.Name, fmt.Errorf("tool %q: %w", node.Tool, ErrToolNotFound))
	}

	return tool, nil
}

// resolveTool looks up a node's tool in the embedded catalog first,
// falling back to the external tool loader when wired.
func (f *Flow) resolveTool(node *Node) *Tool {
	if tool := f.GetTool(node.Tool); tool != nil {
		return tool
	}

	if f.toolLoader == nil {
		return nil
	}

	tool, ok := f.toolLoader.LoadToolForNode(node)
	if !ok {
		return nil
	}

	return tool
}
