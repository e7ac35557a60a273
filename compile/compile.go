// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package compile

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"runtime"
	"strings"

	"github.com/danos/utils/tsort"
	log "github.com/sirupsen/logrus"

	"github.com/iptecharch/yang-compiler/parse"
	"github.com/iptecharch/yang-compiler/schema"
	"github.com/iptecharch/yang-compiler/xpath"
)

// SchemaFilter lets a caller drop compiled nodes from the result, e.g. to
// build a config-only or state-only view.
type SchemaFilter func(sn schema.Node) bool

// Extensions supplies the substatement cardinality of registered
// extension statements so the parser can check their use.
type Extensions interface {
	NodeCardinality(parse.NodeType) map[parse.NodeType]parse.Cardinality
}

// Config carries everything one compilation run depends on. The compiler
// has no process-wide state: diagnostics, the regex engine and the
// feature evaluation environment all travel through here.
type Config struct {
	Features FeaturesChecker
	Filter   SchemaFilter

	// Regexes provides pattern compilation; nil selects the stdlib
	// engine.
	Regexes RegexProvider

	// Logger receives debug traces of expansion and deferred resolution.
	Logger *log.Entry

	// Context cancels a long compilation; checked at each top-level
	// statement boundary.
	Context context.Context
}

func (cfg *Config) logger() *log.Entry {
	if cfg != nil && cfg.Logger != nil {
		return cfg.Logger
	}
	l := log.New()
	l.SetLevel(log.WarnLevel)
	return log.NewEntry(l)
}

func (cfg *Config) regexes() RegexProvider {
	if cfg != nil && cfg.Regexes != nil {
		return cfg.Regexes
	}
	return DefaultRegexProvider()
}

func (cfg *Config) contextOrBackground() context.Context {
	if cfg != nil && cfg.Context != nil {
		return cfg.Context
	}
	return context.Background()
}

type inherited struct {
	config bool
	status schema.Status
}

// Compiler transforms a working set of parsed modules into compiled
// models. One Compiler compiles one working set exactly once and is not
// shared between goroutines.
type Compiler struct {
	modules    map[string]*parse.Module
	modnames   []string
	submodules map[string]*parse.Module

	verifiedFeatures featuresMap
	featuresChecker  FeaturesChecker

	// identities maps <module-name>:<identity-name> to both its parsed
	// statement and its compiled form.
	identities       map[string]parse.Node
	schemaIdentities map[string]*schema.Identity
	moduleIdentities map[string][]*schema.Identity

	extensions Extensions
	filter     SchemaFilter
	regexes    RegexProvider
	log        *log.Entry
	ctx        context.Context

	// whenMachines memoises compilation of shared when statements: all
	// children of one uses expansion carry the same parsed when node and
	// share a single machine.
	whenMachines map[parse.Node]*xpath.Machine

	types        *typePool
	typedefChain map[parse.Node]bool
	deferred     []deferredItem
	augments     []*deferredAugment

	// scratch marks the throwaway compilation of unused grouping bodies;
	// nothing recorded during it may leak into the persistent context.
	scratch  bool
	modelSet schema.ModelSet
}

func NewCompiler(
	extensions Extensions,
	modules map[string]*parse.Module,
	submodules map[string]*parse.Module,
	cfg *Config,
) *Compiler {

	c := &Compiler{}
	c.modules = modules
	c.submodules = submodules
	c.verifiedFeatures = newFeaturesMap()
	c.extensions = extensions
	c.featuresChecker = cfg.featuresOrNil()
	c.filter = cfg.filterOrNil()
	c.regexes = cfg.regexes()
	c.log = cfg.logger()
	c.ctx = cfg.contextOrBackground()
	c.whenMachines = make(map[parse.Node]*xpath.Machine)
	c.identities = make(map[string]parse.Node)
	c.schemaIdentities = make(map[string]*schema.Identity)
	c.moduleIdentities = make(map[string][]*schema.Identity)
	c.types = newTypePool()
	c.typedefChain = make(map[parse.Node]bool)

	return c
}

func (cfg *Config) featuresOrNil() FeaturesChecker {
	if cfg == nil {
		return nil
	}
	return cfg.Features
}

func (cfg *Config) filterOrNil() SchemaFilter {
	if cfg == nil {
		return nil
	}
	return cfg.Filter
}

func (c *Compiler) featureEnabled(feature string) bool {
	if c.featuresChecker == nil {
		return false
	}
	return c.featuresChecker.Status(feature) == ENABLED
}

func (c *Compiler) verifiedFeatureEnabled(feature string) bool {
	return c.verifiedFeatures.Status(feature) == ENABLED
}

func (c *Compiler) recover(errp *error) {
	e := recover()
	if e != nil {
		if _, ok := e.(runtime.Error); ok {
			panic(e)
		}
		*errp = e.(error)
	}
}

func (c *Compiler) error(n parse.Node, err error) {
	if ce, ok := err.(*CompileError); ok && n == nil {
		panic(ce)
	}
	kind := ErrValidation
	if ce, ok := err.(*CompileError); ok {
		kind = ce.Kind
		err = errors.New(ce.Message)
	}
	panic(newCompileError(kind, n, err.Error()))
}

func (c *Compiler) internalError(n parse.Node, msg string) {
	panic(newCompileError(ErrInternal, n, msg))
}

// checkCancelled is called at the boundary of every top-level statement.
func (c *Compiler) checkCancelled(n parse.Node) {
	select {
	case <-c.ctx.Done():
		panic(newCompileError(ErrCancelled, n, c.ctx.Err().Error()))
	default:
	}
}

// Given a node, get the module and node that is being referenced. The
// reference is of the form [prefix:]name; the prefix is an implicit
// reference to the local module when absent.
func (c *Compiler) getModuleAndReference(
	m, n parse.Node,
	name string,
	targetType parse.NodeType,
) (parse.Node, parse.Node) {

	targetModule := m
	nameparts := strings.Split(name, ":")
	if len(nameparts) > 2 {
		c.error(n, fmt.Errorf("invalid %s name: %s", targetType.String(), name))
		return nil, nil
	}
	if len(nameparts) == 2 {
		var err error
		targetModule, err = n.GetModuleByPrefix(nameparts[0], c.modules)
		if err != nil {
			c.error(n, err)
		}
		name = nameparts[1]
	}

	reference := targetModule.LookupChild(targetType, name)
	if reference == nil {
		c.error(n, newCompileError(ErrNotFound, n, fmt.Sprintf(
			"%s not valid: %s", targetType.String(), name)))
		return nil, nil
	}

	return targetModule, reference
}

// Verify a feature: evaluate any features referenced by its if-feature
// substatements to determine whether it is enabled, catching cyclic
// references back to ourselves along the way.
func (c *Compiler) isFeatureValid(m parse.Node, n parse.Node, featTree map[string]bool) bool {
	featName := m.Name() + ":" + n.Name()

	enabled := c.featureEnabled(featName)

	if _, ok := featTree[featName]; ok {
		c.error(n, newCompileError(ErrCycle, n,
			"feature cyclic reference: "+featName))
		return false
	}
	featTree[featName] = true

	for _, ifFeat := range n.ChildrenByType(parse.NodeIfFeature) {
		enabled = c.evalIfFeature(m, ifFeat, featTree) && enabled
	}

	c.verifiedFeatures.set(featName, enabled)
	return enabled
}

// evalIfFeature evaluates one if-feature predicate tree in the context of
// module m. featTree carries cycle detection through nested feature
// definitions; nil at a data-node use site.
func (c *Compiler) evalIfFeature(m parse.Node, ifn parse.Node, featTree map[string]bool) bool {
	expr, err := parseIfFeature(ifn.ArgString())
	if err != nil {
		c.error(ifn, err)
	}
	return expr.eval(func(name string) bool {
		mod, feature := c.getModuleAndReference(m.Root(), ifn, name, parse.NodeFeature)
		if featTree != nil {
			return c.isFeatureValid(mod, feature, featTree)
		}
		return c.verifiedFeatureEnabled(mod.Name() + ":" + feature.Name())
	})
}

// checkFeatures determines the enabled state of every feature in the
// working set and catches duplicate names within a module.
func (c *Compiler) checkFeatures() {
	filteredFeatures := newFeaturesMap()
	for _, module := range c.modules {
		m := module.GetModule()
		dupChk := make(map[string]bool)
		for _, feat := range m.ChildrenByType(parse.NodeFeature) {
			if _, ok := dupChk[feat.Name()]; ok {
				c.error(feat, fmt.Errorf("duplicate feature %s in module %s",
					feat.Name(), m.Name()))
			}
			dupChk[feat.Name()] = true
			filteredFeatures.set(m.Name()+":"+feat.Name(),
				c.isFeatureValid(m, feat, make(map[string]bool)))
		}
	}

	c.verifiedFeatures = filteredFeatures
}

func (c *Compiler) getEnabledFeaturesForPrefix(name string) []string {
	var features []string

	prefix := name + ":"

	for featName, enabled := range c.verifiedFeatures.features {
		if enabled && strings.HasPrefix(featName, prefix) {
			features = append(features,
				strings.TrimPrefix(featName, prefix))
		}
	}
	return features
}

func (c *Compiler) findMissingImportStatement(name string) parse.Node {
	for _, module := range c.modules {
		for _, ch := range module.GetModule().ChildrenByType(parse.NodeImport) {
			if ch.Name() == name {
				return ch
			}
		}
	}
	return nil
}

// ExpandModules runs everything that happens before node emission:
// submodule attachment, include and import processing, feature and
// identity resolution, grouping validation and uses/augment expansion.
// Modules are expanded imports-first; a dependency cycle that survived
// parsing is caught here.
func (c *Compiler) ExpandModules() (err error) {

	defer c.recover(&err)

	//Attach submodules to modules
	for mn, subm := range c.submodules {
		belongs := subm.GetModule().ChildByType(parse.NodeBelongsTo).Name()
		mod, ok := c.modules[belongs]
		if !ok {
			c.error(subm.GetModule(),
				fmt.Errorf("submodule belongs to non-existent module %s", mn))
		}
		mod.GetSubmodules()[mn] = subm.GetModule()
	}

	//Process includes
	for _, module := range c.modules {
		r := module.GetModule()
		c.VerifyModuleIncludes(r, module.GetSubmodules())
		for _, s := range module.GetSubmodules() {
			c.ProcessSubmoduleIncludes(s, module.GetSubmodules())
		}
		c.ProcessModuleIncludes(r, module.GetSubmodules())
	}

	//Process imports
	g := tsort.New()
	for mn, module := range c.modules {
		r := module.GetModule()
		g.AddVertex(mn)
		for _, i := range r.ChildrenByType(parse.NodeImport) {
			g.AddEdge(mn, i.Name())
		}
	}
	c.modnames, err = g.Sort()
	if err != nil {
		panic(newCompileError(ErrCycle, nil, "import "+err.Error()))
	}

	//Process features
	c.checkFeatures()

	//Process identities
	c.checkIdentities()

	// Check for cycles in all groupings before applying
	for _, module := range c.modules {
		if err := c.validateModuleGroupings(module.GetModule()); err != nil {
			c.error(module.GetModule(), err)
		}
		for _, sm := range module.GetSubmodules() {
			if err := c.validateModuleGroupings(sm); err != nil {
				c.error(sm, err)
			}
		}
	}

	// Apply uses and augments
	for _, name := range c.modnames {
		module, ok := c.modules[name]
		if !ok {
			i := c.findMissingImportStatement(name)
			c.error(i, newCompileError(ErrNotFound, i, "module not found"))
		}
		c.log.Debugf("expanding module %s", name)
		c.expandModule(module)
	}

	// Cross-module augments could not apply while their target module
	// was still expanding; they can now.
	c.resolveDeferredAugments()

	return nil
}

// BuildModules is the direct pass: one compiled model per module, in
// import order, followed by deferred resolution and the invariant
// propagation over the assembled set.
func (c *Compiler) BuildModules() (modules map[string]schema.Model, err error) {

	defer c.recover(&err)

	modules = make(map[string]schema.Model)
	for _, name := range c.modnames {
		module, ok := c.modules[name]
		if !ok {
			panic(newCompileError(ErrNotFound, nil,
				fmt.Sprintf("required module %s was not found", name)))
		}
		c.log.Debugf("building module %s", name)
		newModule := c.BuildModule(module, module.GetModule())
		modules[name] = newModule
	}
	return modules, nil
}

func (c *Compiler) VerifyModuleIncludes(m parse.Node, submodules map[string]parse.Node) {
	g := tsort.New()
	for _, i := range m.ChildrenByType(parse.NodeInclude) {
		g.AddEdge(m.Name(), i.Name())
	}
	for _, s := range submodules {
		for _, i := range s.ChildrenByType(parse.NodeInclude) {
			g.AddEdge(s.Name(), i.Name())
		}
	}
	if _, err := g.Sort(); err != nil {
		c.error(m, err)
	}
}

func (c *Compiler) ProcessSubmoduleIncludes(m parse.Node, submodules map[string]parse.Node) {
	tenv := m.Tenv()
	genv := m.Genv()
	for _, i := range m.ChildrenByType(parse.NodeInclude) {
		smod, ok := submodules[i.Name()]
		if !ok {
			c.error(i, fmt.Errorf("unknown submodule %s", i.Name()))
		}
		for _, t := range smod.ChildrenByType(parse.NodeTypedef) {
			if err := tenv.Put(t.Name(), t); err != nil {
				c.error(t, err)
			}
		}
		for _, g := range smod.ChildrenByType(parse.NodeGrouping) {
			if err := genv.Put(g.Name(), g); err != nil {
				c.error(g, err)
			}
		}

		m.AddChildren(smod.ChildrenByType(parse.NodeImport)...)
	}
}

func (c *Compiler) ProcessModuleIncludes(m parse.Node, submodules map[string]parse.Node) {
	tenv := m.Tenv()
	genv := m.Genv()
	for _, i := range m.ChildrenByType(parse.NodeInclude) {
		smod, ok := submodules[i.Name()]
		if !ok {
			c.error(i, fmt.Errorf("unknown submodule %s", i.Name()))
		}
		for _, t := range smod.ChildrenByType(parse.NodeTypedef) {
			if err := tenv.Put(t.Name(), t); err != nil {
				c.error(t, err)
			}
		}
		for _, g := range smod.ChildrenByType(parse.NodeGrouping) {
			if err := genv.Put(g.Name(), g); err != nil {
				c.error(g, err)
			}
		}
		m.AddChildren(smod.ChildrenByType(parse.NodeImport)...)
		m.AddChildren(smod.ChildrenByType(parse.NodeDataDef)...)
		m.AddChildren(smod.ChildrenByType(parse.NodeAugment)...)
		m.AddChildren(smod.ChildrenByType(parse.NodeIdentity)...)
		m.AddChildren(smod.ChildrenByType(parse.NodeRpc)...)
		m.AddChildren(smod.ChildrenByType(parse.NodeNotification)...)
	}
}

func (c *Compiler) buildSchemaTree(m parse.Node, n parse.Node) schema.Tree {
	if n == nil {
		tree, _ := schema.NewTree(nil)
		return tree
	}

	body := n.ChildrenByType(parse.NodeDataDef)
	inh := inherited{config: true, status: schema.Current}

	children := c.buildChildren(inh, m, body)
	tree, err := schema.NewTree(children)
	if err != nil {
		c.error(m, err)
	}
	return tree
}

func (c *Compiler) buildRpc(m, r parse.Node) schema.Rpc {
	input := r.ChildByType(parse.NodeInput)
	inputTree := c.buildSchemaTree(m, input)

	output := r.ChildByType(parse.NodeOutput)
	outputTree := c.buildSchemaTree(m, output)

	return schema.NewRpc(r.Name(), inputTree, outputTree,
		c.extensionInstances(r))
}

func (c *Compiler) buildNotification(m, n parse.Node) schema.Notification {
	return schema.NewNotification(n.Name(), c.buildSchemaTree(m, n),
		c.extensionInstances(n))
}

func (c *Compiler) BuildModule(module *parse.Module, m parse.Node) schema.Model {
	c.CheckChildren(m, m)
	c.checkGroupings(m, m)
	rpcs := make(map[string]schema.Rpc)
	for _, r := range m.ChildrenByType(parse.NodeRpc) {
		c.checkCancelled(r)
		if c.IgnoreNode(r, schema.Current) {
			continue
		}
		rpcs[r.Name()] = c.buildRpc(m, r)
	}

	notifications := make(map[string]schema.Notification)
	for _, n := range m.ChildrenByType(parse.NodeNotification) {
		c.checkCancelled(n)
		if c.IgnoreNode(n, schema.Current) {
			continue
		}
		notifications[n.Name()] = c.buildNotification(m, n)
	}

	inh := inherited{config: true, status: schema.Current}
	children := c.buildChildren(inh, m, m.ChildrenByType(parse.NodeDataDef))

	modTree, err := schema.NewTree(children)
	if err != nil {
		c.error(m, err)
	}

	return schema.NewModel(
		module.GetModule().Name(),
		module.GetModule().Revision(),
		module.GetModule().Ns(),
		module.GetTree().String(),
		modTree,
		rpcs,
		c.getEnabledFeaturesForPrefix(module.GetModule().Name()),
		notifications,
		c.moduleIdentities[module.GetModule().Name()],
		c.extensionInstances(m),
	)
}

// IgnoreNode prunes schema fragments guarded by disabled features.
func (c *Compiler) IgnoreNode(node parse.Node, parentStatus schema.Status) bool {
	for _, ifn := range node.ChildrenByType(parse.NodeIfFeature) {
		if !c.CheckIfFeature(ifn, c.getStatus(node, parentStatus)) {
			return true
		}
	}
	return false
}

func parseStatus(statusStatement parse.Node) schema.Status {
	switch statusStatement.ArgStatus() {
	case "current":
		return schema.Current
	case "deprecated":
		return schema.Deprecated
	case "obsolete":
		return schema.Obsolete
	}
	panic(fmt.Errorf("unexpected value for status: %s",
		statusStatement.ArgStatus()))
}

func (c *Compiler) getStatus(node parse.Node, inheritedStatus schema.Status) schema.Status {
	if statusStatement := node.ChildByType(parse.NodeStatus); statusStatement != nil {
		status := parseStatus(statusStatement)
		if status < inheritedStatus {
			c.error(statusStatement, fmt.Errorf("cannot override status of parent"))
		}
		return status
	}

	return inheritedStatus
}

func (c *Compiler) getConfig(node parse.Node, inheritedConfig bool) bool {
	if configStatement := node.ChildByType(parse.NodeConfig); configStatement != nil {
		config := configStatement.ArgBool()
		if !inheritedConfig && config {
			c.error(configStatement,
				fmt.Errorf("config true node can't have a config false parent"))
		}
		return config
	}
	return inheritedConfig
}

func (c *Compiler) overrideInherited(inh inherited, dataDef parse.Node) inherited {
	// Inherit from parent by default
	out := inh
	out.status = c.getStatus(dataDef, inh.status)
	out.config = c.getConfig(dataDef, inh.config)
	return out
}

func (c *Compiler) buildChildren(inh inherited, m parse.Node, body []parse.Node) []schema.Node {
	var children []schema.Node

	for _, dataDef := range body {
		if c.IgnoreNode(dataDef, inh.status) {
			continue
		}
		ch := c.BuildNode(inh, m, dataDef, false)
		for _, sn := range ch {
			if c.filter != nil && !c.filter(sn) {
				continue
			}
			children = append(children, sn)
		}
	}

	return children
}

// CheckChildren walks the parsed tree for the checks that need the whole
// expanded module: unique constraints and unknown extension statements.
func (c *Compiler) CheckChildren(m parse.Node, n parse.Node) {
	for _, ch := range n.Children() {
		switch ch.Type() {
		case parse.NodeList:
			c.CheckUniqueConstraint(m, ch)
		case parse.NodeUnknown:
			c.CheckUnknown(m, ch)
		}
		c.CheckChildren(m, ch)
	}
}

// unique-arg cannot traverse a descendant list
// (see https://www.ietf.org/mail-archive/web/netmod/current/msg06386.html)
func (c *Compiler) CheckUniqueConstraint(m parse.Node, n parse.Node) {
	for _, uniq := range allUniques(n) {
		for _, path := range uniq {
			var child parse.Node = n
			for i, elem := range path {
				child = child.LookupChild(parse.NodeDataDef, elem.Local)
				if child == nil {
					c.error(n, newCompileError(ErrNotFound, n, fmt.Sprintf(
						"unknown descendant %s referenced in unique",
						xmlPathString(path))))
				}
				if child.Type() == parse.NodeList {
					c.error(n, fmt.Errorf(
						"list descendant %s referenced in unique",
						xmlPathString(path)))
				}
				if i == len(path)-1 {
					if child.Type() != parse.NodeLeaf {
						c.error(n, fmt.Errorf(
							"non leaf descendant %s referenced in unique",
							xmlPathString(path)))
					}
				}
			}
		}
	}
}

// CheckUnknown verifies that an extension statement's definition can be
// found in the local module or the import named by its prefix.
func (c *Compiler) CheckUnknown(m parse.Node, n parse.Node) {
	name := n.Statement()
	nameparts := strings.Split(name, ":")
	if len(nameparts) > 2 {
		c.error(n, fmt.Errorf("invalid extension name %s", name))
	}
	if len(nameparts) == 2 {
		space, local := nameparts[0], nameparts[1]
		mod, err := n.GetModuleByPrefix(space, c.modules)
		if err != nil {
			c.error(n, err)
		}
		ext := mod.LookupChild(parse.NodeExtension, local)
		if ext == nil {
			c.error(n, newCompileError(ErrNotFound, n,
				fmt.Sprintf("unknown extension %s:%s", space, local)))
		}
	} else {
		local := nameparts[0]
		ext := m.LookupChild(parse.NodeExtension, local)
		if ext == nil {
			c.error(n, newCompileError(ErrNotFound, n,
				"unknown extension "+local))
		}
	}
}

// CheckIfFeature verifies that an if-feature reference is valid and
// reports whether its predicate evaluates true.
func (c *Compiler) CheckIfFeature(n parse.Node, parentStatus schema.Status) bool {
	return c.evalIfFeature(n.Root(), n, nil)
}

// Takes a parse.Node error context for a must / when node and extracts
// the file and line number.
func extractFileAndLineFromErrorContext(mustOrWhen parse.Node) string {
	fullLocStr, _ := mustOrWhen.ErrorContext()
	filePlusLine := strings.Join(strings.Split(fullLocStr, ":")[:2], ":")
	filePlusLineSlice := strings.Split(filePlusLine, "/")
	return filePlusLineSlice[len(filePlusLineSlice)-1]
}

// whenMachine compiles the when expression once per parsed statement.
// All nodes produced by one uses expansion reference the same parsed when
// and so share the machine.
func (c *Compiler) whenMachine(n, when parse.Node) *xpath.Machine {
	if mach, ok := c.whenMachines[when]; ok {
		return mach
	}
	mapFn := func(prefix string) (string, error) {
		return when.YangPrefixToNamespace(prefix, c.modules)
	}
	mach, err := xpath.NewExprMachine(when.ArgWhen(), mapFn,
		extractFileAndLineFromErrorContext(when))
	if err != nil {
		c.error(n, err)
	}
	c.whenMachines[when] = mach
	return mach
}

func (c *Compiler) BuildWhens(n parse.Node) []schema.WhenContext {
	var whens []schema.WhenContext

	for _, when := range n.ChildrenByType(parse.NodeWhen) {
		mach := c.whenMachine(n, when)
		errMsg := fmt.Sprintf("'when' condition is false: '%s'", when.ArgWhen())

		whenNs, err := when.YangPrefixToNamespace("", c.modules)
		if err != nil {
			c.error(when, err)
		}
		whens = append(whens, schema.NewWhenContext(
			mach, errMsg, when.AddedByAugment(), whenNs,
			c.extensionInstances(when)))
	}

	return whens
}

func (c *Compiler) BuildMusts(n parse.Node) []schema.MustContext {
	var musts []schema.MustContext

	for _, must := range n.ChildrenByType(parse.NodeMust) {
		mapFn := func(prefix string) (string, error) {
			return must.YangPrefixToNamespace(prefix, c.modules)
		}

		mustExpr := must.ArgMust()
		mustMachine, err := xpath.NewExprMachine(mustExpr, mapFn,
			extractFileAndLineFromErrorContext(must))
		if err != nil {
			c.error(n, err)
		}

		errMsg := must.Msg()
		if errMsg == "" {
			errMsg = fmt.Sprintf("'must' condition is false: '%s'", mustExpr)
		}

		// If not set, the default is added when an error occurs.
		appTag := must.AppTag()

		mustNs, err := must.YangPrefixToNamespace("", c.modules)
		if err != nil {
			c.error(must, err)
		}
		musts = append(musts, schema.NewMustContext(
			mustMachine, errMsg, appTag, mustNs,
			c.extensionInstances(must)))
	}

	return musts
}

func (c *Compiler) CheckMinMax(n parse.Node, min, max uint) {
	if max == 0 {
		c.error(n, errors.New("max-elements must be greater than 0"))
	} else if min > max {
		c.error(n, errors.New("min-elements must be less than max-elements"))
	}
}

func YangModulesFromDir(dir string) ([]string, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsDir() {
		return nil, errors.New("not a directory")
	}
	d, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	names, err := d.Readdirnames(0)
	if err != nil {
		return nil, err
	}
	fnames := make([]string, 0)
	for _, name := range names {
		if !strings.HasSuffix(name, ".yang") {
			continue
		}
		fnames = append(fnames, dir+"/"+name)
	}
	return fnames, nil
}

func ParseModuleDir(dir string, extCard parse.NodeCardinality) (map[string]*parse.Tree, error) {
	return ParseYang(extCard, YangDirs(dir))
}

func ParseModules(extCard parse.NodeCardinality, list ...string) (map[string]*parse.Tree, error) {
	modules := make(map[string]*parse.Tree)
	stringInterner := parse.NewStringInterner()
	argInterner := parse.NewArgInterner()
	for _, fname := range list {
		text, err := ioutil.ReadFile(fname)
		if err != nil {
			return nil, err
		}
		var t *parse.Tree
		if strings.HasSuffix(fname, ".yin") {
			t, err = parse.ParseYinWithInterners(
				fname, string(text), extCard, stringInterner, argInterner)
		} else {
			t, err = parse.ParseWithInterners(
				fname, string(text), extCard, stringInterner, argInterner)
		}
		if err != nil {
			return nil, err
		}
		mod := t.Root.Argument().String()
		if n, ok := modules[mod]; ok {
			return nil, errors.New("module " + mod + " is already defined by file " + n.ParseName)
		}
		modules[mod] = t
	}
	return modules, nil
}

func ParseYang(extCard parse.NodeCardinality, locator YangLocator) (map[string]*parse.Tree, error) {
	yangfiles, err := locator()
	if err != nil {
		return nil, err
	}
	return ParseModules(extCard, yangfiles...)
}

type YangLocator func() ([]string, error)

func YangDirs(dirs ...string) YangLocator {
	return func() ([]string, error) {
		y := make([]string, 0)
		for _, d := range dirs {
			if d == "" {
				continue
			}
			f, err := YangModulesFromDir(d)
			if err != nil {
				continue
			}
			y = append(y, f...)
		}
		return y, nil
	}
}

func YangFiles(files ...string) YangLocator {
	return func() ([]string, error) {
		y := make([]string, 0)
		for _, f := range files {
			if f == "" {
				continue
			}
			y = append(y, f)
		}
		return y, nil
	}
}

func YangLocations(locations ...YangLocator) YangLocator {
	return func() ([]string, error) {
		y := make([]string, 0)
		for _, l := range locations {
			if l == nil {
				continue
			}
			f, err := l()
			if err != nil {
				return nil, err
			}
			y = append(y, f...)
		}
		return y, nil
	}
}

// CompileDir parses and compiles every module found by the locator.
func CompileDir(extensions Extensions, cfg *Config, locator YangLocator,
) (schema.ModelSet, error) {
	var extCard parse.NodeCardinality
	if extensions != nil {
		extCard = extensions.NodeCardinality
	}
	mods, err := ParseYang(extCard, locator)
	if err != nil {
		return nil, err
	}
	return CompileModules(extensions, cfg, mods)
}

// CompileModules compiles a set of parse trees into one model set.
func CompileModules(
	extensions Extensions,
	cfg *Config,
	mods map[string]*parse.Tree,
) (schema.ModelSet, error) {

	modules, submodules := parse.GetModulesAndSubmodules(mods)
	return compileInternal(extensions, modules, submodules, cfg)
}

// CompileParseTrees is the legacy-shaped entry point taking the features
// checker and filter bare.
func CompileParseTrees(
	extensions Extensions,
	mods map[string]*parse.Tree,
	features FeaturesChecker,
	filter SchemaFilter,
) (schema.ModelSet, error) {

	return CompileModules(extensions, &Config{
		Features: features,
		Filter:   filter,
	}, mods)
}

func convertSubmodules(
	modules map[string]schema.Model,
	submods map[string]*parse.Module,
) map[string]schema.Submodule {

	convertedSubmods := make(map[string]schema.Submodule, len(submods))
	for name, submod := range submods {
		belongsTo := submod.GetModule().ChildByType(parse.NodeBelongsTo).Name()
		if mod, ok := modules[belongsTo]; ok {
			convertedSubmods[name] = schema.NewSubmodule(
				name, mod.Namespace(), submod.GetTree().String())
		}
	}
	return convertedSubmods
}

func compileInternal(
	extensions Extensions,
	modules map[string]*parse.Module,
	submodules map[string]*parse.Module,
	cfg *Config,
) (ms schema.ModelSet, err error) {

	c := NewCompiler(extensions, modules, submodules, cfg)

	if err := c.ExpandModules(); err != nil {
		return nil, err
	}

	moduleSchemas, err := c.BuildModules()
	if err != nil {
		return nil, err
	}

	ms, err = schema.NewModelSet(moduleSchemas,
		convertSubmodules(moduleSchemas, submodules))
	if err != nil {
		return nil, err
	}

	if err := c.resolveDeferred(ms); err != nil {
		return nil, err
	}

	c.propagateMandatory(ms)

	return ms, nil
}
