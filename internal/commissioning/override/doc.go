// Package override provides the customisation point that runs between model
// construction and generation.
//
// A Hook receives the built model once and may write into the Custom map of
// any group address or functional object. Generators understand these keys:
//
//   - ha_type: Home Assistant domain for an object, replacing the
//     function-type mapping
//   - ha_address_type: property name for a group address, replacing the
//     datapoint mapping
//   - ha_init: initial record for an object, a map of extra keys
//   - linknx_disp_name: display label for a group address in linknx output
//
// Library callers implement Hook directly or wrap a function in HookFunc.
// Command line users describe overrides in a YAML rule file: each rule has a
// CEL condition and the keys to set when it matches.
//
//	group_addresses:
//	  - when: ga.datapoint == "1.011"
//	    set:
//	      ha_address_type: state_address
//	objects:
//	  - name: garage door
//	    when: obj.room == "Garage" && obj.type == "custom"
//	    set:
//	      ha_type: cover
//	    compute:
//	      ha_init: '{"name": obj.room + " " + obj.name}'
package override
