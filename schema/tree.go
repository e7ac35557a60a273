// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package schema

import (
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/iptecharch/yang-compiler/xpath"
)

// Node is one compiled schema node. Groupings and uses never appear here;
// they are expanded away. The parent chain of every node terminates at
// its module's tree root.
type Node interface {
	Name() string
	Namespace() string
	Module() string
	Submodule() string
	String() string

	Children() []Node
	Child(name string) Node
	Descendant(path []string) Node
	Choices() []Node

	Whens() []WhenContext
	Musts() []MustContext
	Type() Type

	HasDefault() bool
	DefaultChildNames() []string
	OrdBy() string
	HasPresence() bool
	Config() bool
	Status() Status
	Description() string
	Reference() string
	Mandatory() bool
	Extensions() []ExtensionInstance

	// StatementExtensions maps simple substatement keywords (units,
	// default, status, ...) to the extension instances attached to them,
	// preserving what the printer needs to emit them back in place.
	StatementExtensions() map[string][]ExtensionInstance

	Parent() Node

	Validate(path []string, p []string) error

	setParent(Node)
	setStmtExts(map[string][]ExtensionInstance)
	descendant(Node, []string) Node
}

// WhenAndMustContext stores common context for when and must expressions.
type WhenAndMustContext struct {
	// Mach is the parsed XPath expression. One machine may be shared by
	// every node a uses expansion attached the same when to.
	Mach *xpath.Machine

	// ErrMsg is the error message when the expression evaluates false.
	// For must this can come from the YANG; for when the compiler
	// generates it.
	ErrMsg string

	// AppTag is used in the error-app-tag field of errors sent to
	// management clients.
	AppTag string

	// Namespace of the module the expression was written in; unprefixed
	// names in the expression resolve against it.
	Namespace string

	Exts []ExtensionInstance
}

type WhenContext struct {
	WhenAndMustContext

	// RunAsParent indicates the expression context node is the parent
	// rather than the node itself: whens declared on an augment are
	// stored on each augmented child but evaluated against the augment
	// target.
	RunAsParent bool
}

func NewWhenContext(
	mach *xpath.Machine,
	errMsg string,
	runAsParent bool,
	namespace string,
	exts []ExtensionInstance,
) WhenContext {
	return WhenContext{
		WhenAndMustContext: WhenAndMustContext{
			Mach:      mach,
			ErrMsg:    errMsg,
			Namespace: namespace,
			Exts:      exts,
		},
		RunAsParent: runAsParent,
	}
}

type MustContext struct {
	WhenAndMustContext
}

func NewMustContext(
	mach *xpath.Machine,
	errMsg string,
	appTag string,
	namespace string,
	exts []ExtensionInstance,
) MustContext {
	return MustContext{
		WhenAndMustContext: WhenAndMustContext{
			Mach:      mach,
			ErrMsg:    errMsg,
			AppTag:    appTag,
			Namespace: namespace,
			Exts:      exts,
		},
	}
}

type node struct {
	name       xml.Name
	module     string
	submodule  string
	desc       string
	ref        string
	config     bool
	status     Status
	children   map[string]Node
	childOrder []string
	choices    []Node
	parent     Node
	whens      []WhenContext
	musts      []MustContext
	exts       []ExtensionInstance
	stmtExts   map[string][]ExtensionInstance
}

func makenode() *node {
	return &node{children: make(map[string]Node)}
}

func (n *node) Name() string                     { return n.name.Local }
func (n *node) Namespace() string                { return n.name.Space }
func (n *node) Module() string                   { return n.module }
func (n *node) Submodule() string                { return n.submodule }
func (n *node) String() string                   { return n.name.Local }
func (n *node) Description() string              { return n.desc }
func (n *node) Reference() string                { return n.ref }
func (n *node) Config() bool                     { return n.config }
func (n *node) Status() Status                   { return n.status }
func (n *node) Whens() []WhenContext             { return n.whens }
func (n *node) Musts() []MustContext             { return n.musts }
func (n *node) Extensions() []ExtensionInstance  { return n.exts }
func (n *node) Type() Type                       { return nil }
func (n *node) OrdBy() string                    { return "system" }
func (n *node) HasPresence() bool                { return false }
func (n *node) Mandatory() bool                  { return false }
func (n *node) HasDefault() bool                 { return false }
func (n *node) DefaultChildNames() []string      { return nil }
func (n *node) Parent() Node                     { return n.parent }
func (n *node) setParent(p Node)                 { n.parent = p }

func (n *node) StatementExtensions() map[string][]ExtensionInstance {
	return n.stmtExts
}
func (n *node) setStmtExts(m map[string][]ExtensionInstance) { n.stmtExts = m }

// SetStatementExtensions attaches substatement extension instances to a
// compiled node; the compiler calls it once per node.
func SetStatementExtensions(sn Node, m map[string][]ExtensionInstance) {
	if len(m) == 0 {
		return
	}
	sn.setStmtExts(m)
}
func (n *node) Choices() []Node                  { return n.choices }

func (n *node) Children() []Node {
	ch := make([]Node, 0, len(n.childOrder))
	for _, name := range n.childOrder {
		ch = append(ch, n.children[name])
	}
	return ch
}

func (n *node) Child(name string) Node {
	return n.children[name]
}

func (n *node) addChild(ch Node) error {
	name := ch.Name()
	if _, exists := n.children[name]; exists {
		return errors.New("redefinition of name " + name)
	}
	n.children[name] = ch
	n.childOrder = append(n.childOrder, name)
	if _, ok := ch.(Choice); ok {
		n.choices = append(n.choices, ch)
	}
	return nil
}

// addChildren wires parent back-references as it goes: the parent owns
// the child, the child holds a non-owning reference back.
func (n *node) addChildren(self Node, children []Node) error {
	for _, ch := range children {
		if err := n.addChild(ch); err != nil {
			return err
		}
		ch.setParent(self)
	}
	return nil
}

func (n *node) descendant(spec Node, p []string) Node {
	if len(p) == 0 {
		return spec
	}
	c := spec.Child(p[0])
	if c == nil {
		// Schema paths do not name choices and cases explicitly; look
		// through any choice children for the target.
		for _, choice := range spec.Choices() {
			for _, cs := range choice.Children() {
				if hit := cs.Child(p[0]); hit != nil {
					c = hit
					break
				}
			}
			if c != nil {
				break
			}
		}
	}
	if c == nil {
		return nil
	}
	return c.descendant(c, p[1:])
}

func (n *node) Descendant(path []string) Node {
	return n.descendant(n, path)
}

func (n *node) Validate(path []string, p []string) error {
	if len(p) == 0 {
		return nil
	}
	c, ok := n.children[p[0]]
	if !ok {
		return NewPathInvalidError(path, p[0])
	}
	path = append(path, p[0])
	return c.Validate(path, p[1:])
}

type Tree interface {
	Node
	isTree()
}

type tree struct {
	*node
}

// Ensure that other schema types don't meet the interface
func (*tree) isTree() {}

// Compile time check that the concrete type meets the interface
var _ Tree = (*tree)(nil)

func (t *tree) HasPresence() bool { return true }

func (t *tree) Descendant(path []string) Node {
	return t.descendant(t, path)
}

func NewTree(children []Node) (Tree, error) {
	t := &tree{node: makenode()}
	t.config = true

	if err := t.addChildren(t, children); err != nil {
		return nil, err
	}
	return t, nil
}

type Rpc interface {
	Name() string
	Input() Tree
	Output() Tree
	Extensions() []ExtensionInstance
	isRpc()
}

type rpc struct {
	name   string
	input  Tree
	output Tree
	exts   []ExtensionInstance
}

// Ensure that other schema types don't meet the interface
func (r *rpc) isRpc() {}

// Compile time check that the concrete type meets the interface
var _ Rpc = (*rpc)(nil)

func NewRpc(name string, input, output Tree, exts []ExtensionInstance) Rpc {
	return &rpc{name: name, input: input, output: output, exts: exts}
}

func (r *rpc) Name() string                    { return r.name }
func (r *rpc) Input() Tree                     { return r.input }
func (r *rpc) Output() Tree                    { return r.output }
func (r *rpc) Extensions() []ExtensionInstance { return r.exts }

type Notification interface {
	Name() string
	Schema() Tree
	Extensions() []ExtensionInstance
	isNotification()
}

type notification struct {
	name string
	tree Tree
	exts []ExtensionInstance
}

// Ensure that other schema types don't meet the interface
func (n *notification) isNotification() {}

// Compile time check that the concrete type meets the interface
var _ Notification = (*notification)(nil)

func NewNotification(name string, t Tree, exts []ExtensionInstance) Notification {
	return &notification{name: name, tree: t, exts: exts}
}

func (n *notification) Name() string                    { return n.name }
func (n *notification) Schema() Tree                    { return n.tree }
func (n *notification) Extensions() []ExtensionInstance { return n.exts }

type Model interface {
	Tree
	Identifier() string
	Version() string
	Data() string
	Features() []string
	Rpcs() map[string]Rpc
	Notifications() map[string]Notification
	Identities() []*Identity
	isModel()
}

type model struct {
	Tree
	identifier    string
	version       string
	namespace     string
	data          string
	features      []string
	rpcs          map[string]Rpc
	notifications map[string]Notification
	identities    []*Identity
	exts          []ExtensionInstance
}

// Ensure that other schema types don't meet the interface
func (s *model) isModel() {}

// Compile time check that the concrete type meets the interface
var _ Model = (*model)(nil)

func (s *model) Identifier() string             { return s.identifier }
func (s *model) Version() string                { return s.version }
func (s *model) Namespace() string              { return s.namespace }
func (s *model) Data() string                   { return s.data }
func (s *model) Features() []string             { return s.features }
func (s *model) Rpcs() map[string]Rpc           { return s.rpcs }
func (s *model) Identities() []*Identity        { return s.identities }
func (s *model) Extensions() []ExtensionInstance {
	return s.exts
}

func (s *model) Notifications() map[string]Notification {
	return s.notifications
}

func NewModel(
	name, revision, namespace, data string,
	tree Tree,
	rpcs map[string]Rpc,
	features []string,
	notifications map[string]Notification,
	identities []*Identity,
	exts []ExtensionInstance,
) Model {
	return &model{
		Tree:          tree,
		identifier:    name,
		version:       revision,
		namespace:     namespace,
		data:          data,
		rpcs:          rpcs,
		features:      features,
		notifications: notifications,
		identities:    identities,
		exts:          exts,
	}
}

type Submodule interface {
	Identifier() string
	Namespace() string
	Data() string
	isSubmodule()
}

type submodule struct {
	identifier string
	namespace  string
	data       string
}

// Ensure that other schema types don't meet the interface
func (s *submodule) isSubmodule() {}

// Compile time check that the concrete type meets the interface
var _ Submodule = (*submodule)(nil)

func NewSubmodule(identifier, namespace, data string) Submodule {
	return &submodule{identifier: identifier, namespace: namespace, data: data}
}

func (s *submodule) Identifier() string { return s.identifier }
func (s *submodule) Namespace() string  { return s.namespace }
func (s *submodule) Data() string       { return s.data }

type ModelSet interface {
	Tree
	Modules() map[string]Model
	Submodules() map[string]Submodule
	Rpcs() map[string]map[string]Rpc
	Notifications() map[string]map[string]Notification
	// LookupIdentity resolves an identity by defining module and name.
	LookupIdentity(module, name string) (*Identity, bool)
	isModelSet()
}

type modelSet struct {
	tree
	modules       map[string]Model
	submodules    map[string]Submodule
	rpcs          map[string]map[string]Rpc
	notifications map[string]map[string]Notification
	identities    map[xml.Name]*Identity
}

// Ensure that other schema types don't meet the interface
func (*modelSet) isModelSet() {}

// Compile time check that the concrete type meets the interface
var _ ModelSet = (*modelSet)(nil)

func (t *modelSet) Modules() map[string]Model        { return t.modules }
func (t *modelSet) Submodules() map[string]Submodule { return t.submodules }
func (t *modelSet) Rpcs() map[string]map[string]Rpc  { return t.rpcs }

func (t *modelSet) Notifications() map[string]map[string]Notification {
	return t.notifications
}

func (t *modelSet) LookupIdentity(module, name string) (*Identity, bool) {
	id, ok := t.identities[xml.Name{Space: module, Local: name}]
	return id, ok
}

func NewModelSet(
	modules map[string]Model,
	submodules map[string]Submodule,
) (ModelSet, error) {
	ms := &modelSet{tree: tree{node: makenode()}}

	ms.config = true
	ms.submodules = submodules
	ms.modules = make(map[string]Model)
	ms.rpcs = make(map[string]map[string]Rpc)
	ms.notifications = make(map[string]map[string]Notification)
	ms.identities = make(map[xml.Name]*Identity)

	// Merge the modules into a single tree
	for _, mod := range modules {
		ms.modules[mod.Identifier()] = mod
		if err := ms.addChildren(ms, mod.Children()); err != nil {
			return nil, err
		}

		ms.rpcs[mod.Namespace()] = mod.Rpcs()
		ms.notifications[mod.Namespace()] = mod.Notifications()
		for _, id := range mod.Identities() {
			ms.identities[id.Name] = id
		}
	}

	return ms, nil
}

type Container interface {
	Node
	Presence() bool
	PresenceText() string
	Actions() map[string]Rpc
	Notifications() map[string]Notification
	isContainer()
}

type container struct {
	*node
	presence      bool
	presenceText  string
	mandatory     bool
	actions       map[string]Rpc
	notifications map[string]Notification
}

// Ensure that other schema types don't meet the interface
func (*container) isContainer() {}

// Compile time check that the concrete type meets the interface
var _ Container = (*container)(nil)

func NewContainer(
	name, namespace, modulename, submodule, desc, ref string,
	presence bool,
	presenceText string,
	config bool,
	status Status,
	whens []WhenContext,
	musts []MustContext,
	actions map[string]Rpc,
	notifications map[string]Notification,
	exts []ExtensionInstance,
	children []Node,
) (Container, error) {

	c := &container{node: makenode()}
	c.name.Space = namespace
	c.name.Local = name
	c.module = modulename
	c.submodule = submodule
	c.desc = desc
	c.ref = ref
	c.presence = presence
	c.presenceText = presenceText
	c.config = config
	c.status = status
	c.whens = whens
	c.musts = musts
	c.actions = actions
	c.notifications = notifications
	c.exts = exts

	if err := c.addChildren(c, children); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *container) Presence() bool                          { return c.presence }
func (c *container) PresenceText() string                    { return c.presenceText }
func (c *container) HasPresence() bool                       { return c.presence }
func (c *container) Actions() map[string]Rpc                 { return c.actions }
func (c *container) Notifications() map[string]Notification  { return c.notifications }

// Mandatory on a non-presence container is a derived flag: it is set when
// at least one descendant reachable without crossing a presence container
// or a choice is itself mandatory.
func (c *container) Mandatory() bool { return c.mandatory }

func (c *container) Descendant(path []string) Node {
	return c.descendant(c, path)
}

// SetContainerMandatory is the invariant propagator's hook for marking a
// non-presence container whose mandatory descendant count transitioned.
func SetContainerMandatory(c Container, mandatory bool) {
	if impl, ok := c.(*container); ok && !impl.presence {
		impl.mandatory = mandatory
	}
}

type Limit struct {
	Min uint
	Max uint
}

type List interface {
	Node
	Limit() Limit
	Keys() []string
	Uniques() [][][]xml.Name
	Actions() map[string]Rpc
	Notifications() map[string]Notification
	isList()
}

type list struct {
	*node
	orderedBy     string
	limit         Limit
	keys          []string
	uniques       [][][]xml.Name
	actions       map[string]Rpc
	notifications map[string]Notification
}

// Ensure that other schema types don't meet the interface
func (*list) isList() {}

// Compile time check that the concrete type meets the interface
var _ List = (*list)(nil)

func NewList(
	name, namespace, modulename, submodule, desc, ref, orderedby string,
	min, max uint,
	config bool,
	status Status,
	keys []string,
	uniques [][][]xml.Name,
	whens []WhenContext,
	musts []MustContext,
	actions map[string]Rpc,
	notifications map[string]Notification,
	exts []ExtensionInstance,
	children []Node,
) (List, error) {

	if orderedby == "" {
		orderedby = "system"
	}

	l := &list{node: makenode()}
	l.name.Local = name
	l.name.Space = namespace
	l.module = modulename
	l.submodule = submodule
	l.desc = desc
	l.ref = ref
	l.config = config
	l.status = status
	l.orderedBy = orderedby
	l.limit = Limit{min, max}
	l.keys = keys
	l.uniques = uniques
	l.whens = whens
	l.musts = musts
	l.actions = actions
	l.notifications = notifications
	l.exts = exts

	if err := l.addChildren(l, children); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *list) Limit() Limit                           { return l.limit }
func (l *list) Keys() []string                         { return l.keys }
func (l *list) Uniques() [][][]xml.Name                { return l.uniques }
func (l *list) OrdBy() string                          { return l.orderedBy }
func (l *list) Actions() map[string]Rpc                { return l.actions }
func (l *list) Notifications() map[string]Notification { return l.notifications }

func (l *list) Mandatory() bool { return l.limit.Min > 0 }

func (l *list) Descendant(path []string) Node {
	return l.descendant(l, path)
}

func (l *list) Type() Type {
	if len(l.keys) == 0 {
		return nil
	}
	k := l.children[l.keys[0]]
	if k == nil {
		return nil
	}
	return k.Type()
}

type Leaf interface {
	Node
	Default() (string, bool)
	Units() string
	IsKey() bool
	isLeaf()
}

type leaf struct {
	*node
	units     string
	mandatory bool
	isKey     bool
	typ       Type
}

// Ensure that other schema types don't meet the interface
func (l *leaf) isLeaf() {}

// Compile time check that the concrete type meets the interface
var _ Leaf = (*leaf)(nil)

func NewLeaf(
	name, namespace, modulename, submodule, desc, ref, units string,
	mandatory bool,
	isKey bool,
	typ Type,
	config bool,
	status Status,
	whens []WhenContext,
	musts []MustContext,
	exts []ExtensionInstance,
) Leaf {
	l := &leaf{node: makenode()}
	l.name.Local = name
	l.name.Space = namespace
	l.module = modulename
	l.submodule = submodule
	l.desc = desc
	l.ref = ref
	l.units = units
	l.mandatory = mandatory
	l.isKey = isKey
	l.typ = typ
	l.config = config
	l.status = status
	l.whens = whens
	l.musts = musts
	l.exts = exts
	return l
}

// A list key is never mandatory in the schema sense and never carries a
// usable default; its presence is implied by the list entry itself.
func (l *leaf) Mandatory() bool {
	if l.isKey {
		return false
	}
	return l.mandatory
}

func (l *leaf) IsKey() bool   { return l.isKey }
func (l *leaf) Units() string { return l.units }
func (l *leaf) Type() Type    { return l.typ }

func (l *leaf) Default() (string, bool) {
	if l.isKey || l.mandatory {
		return "", false
	}
	return l.typ.Default()
}

func (l *leaf) HasDefault() bool {
	_, has := l.Default()
	return has
}

func (l *leaf) DefaultChildNames() []string {
	def, has := l.Default()
	if !has {
		return nil
	}
	return []string{def}
}

func (l *leaf) HasPresence() bool {
	_, ok := l.typ.(Empty)
	return ok
}

func (l *leaf) Descendant(path []string) Node {
	return l.descendant(l, path)
}

func (l *leaf) Validate(path []string, p []string) error {
	if len(p) == 0 {
		if _, ok := l.typ.(Empty); ok {
			return nil
		}
		return NewMissingValueError(path)
	}
	h, t := p[0], p[1:]
	path = append(path, h)
	// There should be nothing after the value
	if len(t) != 0 {
		return NewPathInvalidError(path, p[1])
	}
	return l.typ.Validate(path, h)
}

type LeafList interface {
	Node
	Limit() Limit
	Defaults() []string
	Units() string
	isLeafList()
}

type leafList struct {
	*node
	defaults  []string
	units     string
	limit     Limit
	orderedBy string
	typ       Type
}

func (l *leafList) isLeafList() {}

// Compile time check that the concrete type meets the interface
var _ LeafList = (*leafList)(nil)

func NewLeafList(
	name, namespace, modulename, submodule, desc, ref, orderedby, units string,
	defaults []string,
	min, max uint,
	typ Type,
	config bool,
	status Status,
	whens []WhenContext,
	musts []MustContext,
	exts []ExtensionInstance,
) LeafList {
	if orderedby == "" {
		orderedby = "system"
	}

	l := &leafList{node: makenode()}
	l.name.Local = name
	l.name.Space = namespace
	l.module = modulename
	l.submodule = submodule
	l.desc = desc
	l.ref = ref
	l.defaults = defaults
	l.orderedBy = orderedby
	l.units = units
	l.limit.Min = min
	l.limit.Max = max
	l.typ = typ
	l.config = config
	l.status = status
	l.whens = whens
	l.musts = musts
	l.exts = exts
	return l
}

func (l *leafList) Limit() Limit       { return l.limit }
func (l *leafList) Defaults() []string { return l.defaults }
func (l *leafList) Units() string      { return l.units }
func (l *leafList) OrdBy() string      { return l.orderedBy }
func (l *leafList) Type() Type         { return l.typ }

func (l *leafList) Mandatory() bool { return l.limit.Min > 0 }

func (l *leafList) HasDefault() bool { return len(l.defaults) > 0 }

func (l *leafList) DefaultChildNames() []string { return l.defaults }

func (l *leafList) Descendant(path []string) Node {
	return l.descendant(l, path)
}

func (l *leafList) Validate(path []string, p []string) error {
	if len(p) == 0 {
		return NewMissingValueError(path)
	}
	h, t := p[0], p[1:]
	path = append(path, h)
	if len(t) != 0 {
		return NewPathInvalidError(path, p[1])
	}
	return l.typ.Validate(path, h)
}

type Choice interface {
	Node
	DefaultCase() string
	DefaultCaseNode() Node
	isChoice()
}

type choice struct {
	*node
	mandatory bool
	def       string
	defCase   Node
}

// Ensure that other schema types don't meet the interface
func (*choice) isChoice() {}

// Compile time check that the concrete type meets the interface
var _ Choice = (*choice)(nil)

func NewChoice(
	name, namespace, modulename, submodulename, def, desc, ref string,
	mandatory, config bool,
	status Status,
	whens []WhenContext,
	exts []ExtensionInstance,
	children []Node,
) (Choice, error) {
	c := &choice{node: makenode()}
	c.name.Local = name
	c.name.Space = namespace
	c.module = modulename
	c.submodule = submodulename
	c.def = def
	c.desc = desc
	c.ref = ref
	c.mandatory = mandatory
	c.config = config
	c.status = status
	c.whens = whens
	c.exts = exts

	if err := c.addChildren(c, children); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *choice) DefaultCase() string   { return c.def }
func (c *choice) DefaultCaseNode() Node { return c.defCase }
func (c *choice) HasDefault() bool      { return c.def != "" }
func (c *choice) Mandatory() bool       { return c.mandatory }

func (c *choice) Descendant(path []string) Node {
	return c.descendant(c, path)
}

// ResolveChoiceDefaultCase installs the default case reference; the
// resolution is deferred until all cases of the choice exist.
func ResolveChoiceDefaultCase(c Choice, cs Node) error {
	impl, ok := c.(*choice)
	if !ok {
		return fmt.Errorf("not a choice: %s", c.Name())
	}
	if cs.Parent() != Node(impl) {
		return fmt.Errorf("case %s does not belong to choice %s",
			cs.Name(), c.Name())
	}
	impl.defCase = cs
	return nil
}

type Case interface {
	Node
	isCase()
}

type ycase struct {
	*node
	implicit bool
}

// Ensure that other schema types don't meet the interface
func (*ycase) isCase() {}

// Compile time check that the concrete type meets the interface
var _ Case = (*ycase)(nil)

func NewCase(
	name, namespace, modulename, submodule, desc, ref string,
	implicit bool,
	config bool,
	status Status,
	whens []WhenContext,
	exts []ExtensionInstance,
	children []Node,
) (Case, error) {
	c := &ycase{node: makenode()}
	c.name.Local = name
	c.name.Space = namespace
	c.module = modulename
	c.submodule = submodule
	c.desc = desc
	c.ref = ref
	c.implicit = implicit
	c.config = config
	c.status = status
	c.whens = whens
	c.exts = exts

	if err := c.addChildren(c, children); err != nil {
		return nil, err
	}
	return c, nil
}

// Implicit reports whether the case was manufactured by short-case
// normalisation rather than written in the source.
func (c *ycase) Implicit() bool { return c.implicit }

func (c *ycase) Descendant(path []string) Node {
	return c.descendant(c, path)
}

type AnyXml interface {
	Node
	isAnyXml()
}

type anyXml struct {
	*node
	mandatory bool
}

func (*anyXml) isAnyXml() {}

// Compile time check that the concrete type meets the interface
var _ AnyXml = (*anyXml)(nil)

func NewAnyXml(
	name, namespace, modulename, submodule, desc, ref string,
	mandatory, config bool,
	status Status,
	whens []WhenContext,
	musts []MustContext,
	exts []ExtensionInstance,
) AnyXml {
	a := &anyXml{node: makenode()}
	a.name.Local = name
	a.name.Space = namespace
	a.module = modulename
	a.submodule = submodule
	a.desc = desc
	a.ref = ref
	a.mandatory = mandatory
	a.config = config
	a.status = status
	a.whens = whens
	a.musts = musts
	a.exts = exts
	return a
}

func (a *anyXml) Mandatory() bool { return a.mandatory }

func (a *anyXml) Descendant(path []string) Node {
	return a.descendant(a, path)
}

type AnyData interface {
	Node
	isAnyData()
}

type anyData struct {
	*node
	mandatory bool
}

func (*anyData) isAnyData() {}

// Compile time check that the concrete type meets the interface
var _ AnyData = (*anyData)(nil)

func NewAnyData(
	name, namespace, modulename, submodule, desc, ref string,
	mandatory, config bool,
	status Status,
	whens []WhenContext,
	musts []MustContext,
	exts []ExtensionInstance,
) AnyData {
	a := &anyData{node: makenode()}
	a.name.Local = name
	a.name.Space = namespace
	a.module = modulename
	a.submodule = submodule
	a.desc = desc
	a.ref = ref
	a.mandatory = mandatory
	a.config = config
	a.status = status
	a.whens = whens
	a.musts = musts
	a.exts = exts
	return a
}

func (a *anyData) Mandatory() bool { return a.mandatory }

func (a *anyData) Descendant(path []string) Node {
	return a.descendant(a, path)
}
