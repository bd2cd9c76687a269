package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/wayfinder/pkg/navpath"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Inspect navigation tokens",
}

var pathEncodeCmd = &cobra.Command{
	Use:   "encode <segment>...",
	Short: "Build a token from segments and --param key=value pairs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, _ := cmd.Flags().GetStringArray("param")

		p := navpath.Start(args[0])
		for _, seg := range args[1:] {
			p = p.Push(seg)
		}
		var ops []navpath.ParamOp
		for _, kv := range params {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("param %q: expected key=value", kv)
			}
			ops = append(ops, navpath.Set(k, v))
		}
		token, err := p.UpdateParams(navpath.Replace, ops...).Encode()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n(%d bytes)\n", token, len(token))
		return nil
	},
}

var pathDecodeCmd = &cobra.Command{
	Use:   "decode <token>",
	Short: "Print the segments and params of a token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := navpath.Decode(args[0])
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(struct {
			Segments []string          `yaml:"segments"`
			Params   map[string]string `yaml:"params,omitempty"`
			Current  string            `yaml:"current"`
			Depth    int               `yaml:"depth"`
		}{p.Segments, p.Params, p.Current(), p.Depth()})
	},
}

func init() {
	rootCmd.AddCommand(pathCmd)
	pathCmd.AddCommand(pathEncodeCmd, pathDecodeCmd)
	pathEncodeCmd.Flags().StringArray("param", nil, "Query parameter as key=value (repeatable)")
}
